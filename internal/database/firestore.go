package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierr "frailes/internal/errors"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreClient struct {
	*firestore.Client
	writeTimeout    time.Duration
	errToleranceCap int
	retryDelay      time.Duration
}

var _ Store = FirestoreClient{}

func New(client *firestore.Client, writeTimeout time.Duration) FirestoreClient {
	if writeTimeout <= 0 {
		writeTimeout = time.Second * 30
	}
	return FirestoreClient{
		Client:          client,
		writeTimeout:    writeTimeout,
		errToleranceCap: 20,
		retryDelay:      time.Second,
	}
}

// Subscribe keeps a snapshot listener open until ctx is cancelled. A broken
// listener is reopened; once the error tolerance cap is reached, or the error
// is not retryable, a terminal Snapshot carrying the error is emitted and the
// channel is closed.
func (c FirestoreClient) Subscribe(ctx context.Context, target Target) <-chan Snapshot {

	ch := make(chan Snapshot)

	go func() {
		defer close(ch)

		errCnt := 0
		for {
			err := c.listen(ctx, target, ch)
			if ctx.Err() != nil || isContextError(err) || errors.Is(err, iterator.Done) {
				return
			}

			log.Error().Err(err).Msgf("error reading snapshots of %s", target)
			errCnt++
			if errCnt >= c.errToleranceCap || !isRetryable(err) {
				select {
				case ch <- Snapshot{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}
	}()

	return ch
}

// listen forwards snapshots of one listener until it fails.
func (c FirestoreClient) listen(ctx context.Context, target Target, ch chan<- Snapshot) error {

	if target.IsDoc() {
		it := c.Collection(target.Collection).Doc(target.Doc).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				return err
			}

			if err := deliver(ctx, ch, docSnapshot(snap)); err != nil {
				return err
			}
		}
	}

	it := c.query(target).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			return err
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return err
		}

		if err := deliver(ctx, ch, querySnapshot(snap.ReadTime, docs)); err != nil {
			return err
		}
	}
}

// docSnapshot converts a document snapshot. A missing document yields no docs.
func docSnapshot(snap *firestore.DocumentSnapshot) Snapshot {
	s := Snapshot{ReadTime: snap.ReadTime}
	if snap.Exists() {
		s.Docs = []Document{{ID: snap.Ref.ID, Data: snap.Data()}}
	}
	return s
}

// querySnapshot converts the documents of a query snapshot read at readTime.
func querySnapshot(readTime time.Time, docs []*firestore.DocumentSnapshot) Snapshot {
	s := Snapshot{ReadTime: readTime, Docs: make([]Document, 0, len(docs))}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		s.Docs = append(s.Docs, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return s
}

func (c FirestoreClient) query(target Target) firestore.Query {
	query := c.Collection(target.Collection).Query
	if target.OrderBy == "" {
		return query
	}

	dir := firestore.Asc
	if target.Direction == Desc {
		dir = firestore.Desc
	}
	return query.OrderBy(target.OrderBy, dir)
}

func deliver(ctx context.Context, ch chan<- Snapshot, s Snapshot) error {
	select {
	case ch <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c FirestoreClient) Write(ctx context.Context, collection, id string, updates []Update) (time.Time, error) {
	if len(updates) == 0 {
		return time.Time{}, nil
	}

	fu := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		fu = append(fu, firestore.Update{Path: u.Path, Value: u.Value})
	}

	res, err := c.UpdateDoc(ctx, c.Collection(collection).Doc(id), fu)
	if err != nil {
		return time.Time{}, fmt.Errorf("write %s: %w, id: %s", collection, translate(err), id)
	}
	return res.UpdateTime, nil
}

func (c FirestoreClient) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	fields := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		fields[k] = v
	}
	fields[TimestampField] = firestore.ServerTimestamp

	docRef, _, err := c.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", collection, translate(err))
	}
	return docRef.ID, nil
}

func (c FirestoreClient) CreateDoc(ctx context.Context, collection, id string, data map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if _, err := c.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		return fmt.Errorf("create %s: %w, id: %s", collection, translate(err), id)
	}
	return nil
}

func (c FirestoreClient) Delete(ctx context.Context, collection, id string) error {
	if _, err := c.DeleteDoc(ctx, c.Collection(collection).Doc(id)); err != nil {
		return fmt.Errorf("delete %s: %w, id: %s", collection, translate(err), id)
	}
	return nil
}

func (c FirestoreClient) UpdateDoc(ctx context.Context, docRef *firestore.DocumentRef, updates []firestore.Update, preconds ...firestore.Precondition) (_ *firestore.WriteResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	return docRef.Update(ctx, updates, preconds...)
}

func (c FirestoreClient) DeleteDoc(ctx context.Context, docRef *firestore.DocumentRef) (_ *firestore.WriteResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	colls, err := docRef.Collections(ctx).GetAll()
	if err != nil {
		log.Error().Err(err).Msgf("failed to get all collections of the doc %s", docRef.Path)
		return nil, err
	}

	for _, collRef := range colls {
		// must not be concurrent otherwise subcolls will not be cleaned up due to context cancellation
		c.DeleteColl(ctx, collRef)
	}

	return docRef.Delete(ctx)
}

func (c FirestoreClient) DeleteColl(ctx context.Context, collRef *firestore.CollectionRef) {
	docs := collRef.Documents(ctx)
	defer docs.Stop()
	for {
		doc, err := docs.Next()
		if err != nil {
			return
		}
		c.DeleteDoc(ctx, doc.Ref)
	}
}

func isContextError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	code := status.Code(err)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}

func isRetryable(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.InvalidArgument, codes.FailedPrecondition:
		return false
	}
	return true
}

// translate maps store status codes onto the sentinel errors callers match on.
func translate(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ierr.NotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", ierr.ErrAlreadyExists, err)
	}
	return err
}
