// Package blob uploads images to the Firebase storage bucket and returns their
// public download URLs.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	imagesFolder  = "images"
	downloadToken = "firebaseStorageDownloadTokens"
	downloadBase  = "https://firebasestorage.googleapis.com/v0/b/"
)

type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

type FirebaseUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
	now        func() time.Time
}

func NewFirebaseUploader(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseUploader, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketName, err)
	}

	return &FirebaseUploader{bucket: bucket, bucketName: bucketName, now: time.Now}, nil
}

// Upload stores r under images/<unixmilli>_<name> and returns its download URL.
func (u *FirebaseUploader) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	object := ObjectName(name, u.now())
	token := uuid.NewString()

	w := u.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadToken: token}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}

	log.Debug().Msgf("blob: uploaded %s", object)
	return DownloadURL(u.bucketName, object, token), nil
}

// ObjectName builds the object path of an upload.
func ObjectName(name string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Join(strings.Fields(base), "_")
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%s/%d_%s", imagesFolder, at.UnixMilli(), base)
}

func DownloadURL(bucket, object, token string) string {
	return fmt.Sprintf("%s%s/o/%s?alt=media&token=%s", downloadBase, bucket, url.PathEscape(object), token)
}
