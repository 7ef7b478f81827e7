package app

import (
	"context"
	"encoding/json"
	"fmt"

	"frailes/internal/blob"
	"frailes/internal/config"
	"frailes/internal/copywriter"
	"frailes/internal/database"
	"frailes/internal/database/memstore"
	"frailes/internal/gemini"
	"frailes/internal/gpt"
	gptutils "frailes/internal/gpt/utils"
	"frailes/internal/utils"

	Firestore "firebase.google.com/go/v4"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Bootstrap connects to the configured backend and builds the App. The
// returned close func releases the remote clients.
func Bootstrap(ctx context.Context, cnf config.Config, opts ...Option) (*App, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var db database.Store
	switch cnf.Sync.Backend {
	case config.BackendMemory:
		log.Warn().Msg("using the in-memory backend, nothing is persisted")
		db = memstore.New()
	default:
		fbApp, err := createFirestoreApp(ctx, cnf.Firebase)
		if err != nil {
			return nil, closeAll, err
		}

		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to create firestore client: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		db = database.New(client, cnf.Firebase.WriteTimeout)

		if cnf.Firebase.StorageBucket != "" {
			uploader, err := blob.NewFirebaseUploader(ctx, fbApp, cnf.Firebase.StorageBucket)
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			opts = append(opts, WithUploader(uploader))
		}
	}

	writer, closeWriter, err := createCopywriter(ctx, cnf)
	if err != nil {
		log.Warn().Err(err).Msg("copy drafting is disabled")
	} else {
		closers = append(closers, closeWriter)
		opts = append(opts, WithCopywriter(writer))
	}

	return New(cnf, db, opts...), closeAll, nil
}

func createFirestoreApp(ctx context.Context, cnf config.Firebase) (*Firestore.App, error) {
	FirestoreCreds, err := json.Marshal(cnf)
	if err != nil {
		return nil, err
	}

	sa := option.WithCredentialsJSON(FirestoreCreds)
	var fbConfig *Firestore.Config
	if cnf.StorageBucket != "" {
		fbConfig = &Firestore.Config{StorageBucket: cnf.StorageBucket}
	}

	app, err := Firestore.NewApp(ctx, fbConfig, sa)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}
	return app, nil
}

func createCopywriter(ctx context.Context, cnf config.Config) (*copywriter.Writer, func(), error) {
	tokenizer, err := gptutils.NewTokenzier()
	if err != nil {
		return nil, nil, err
	}
	options := copywriter.Options{TokenBudget: cnf.Copy.TokenBudget}

	switch cnf.Copy.Provider {
	case config.ProviderGemini:
		if cnf.Gemini.ApiKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		generator, err := gemini.NewGenerator(ctx, cnf.Gemini.ApiKey, cnf.Gemini.Model)
		if err != nil {
			return nil, nil, err
		}
		return copywriter.New(generator, tokenizer, options), func() { generator.Close() }, nil
	default:
		if cnf.GilasAI.ApiKey == "" {
			return nil, nil, fmt.Errorf("GILAS_API_KEY is not set")
		}
		gptFactory, err := gpt.NewClientFactory(gpt.ClientConfig{
			ApiUrl:      cnf.GilasAI.ApiUrl,
			ApiKey:      cnf.GilasAI.ApiKey,
			Model:       cnf.GilasAI.Model,
			Temperature: utils.Float32ToPointer(0.4),
		})
		if err != nil {
			return nil, nil, err
		}
		return copywriter.New(gpt.NewGenerator(gptFactory), tokenizer, options), func() {}, nil
	}
}
