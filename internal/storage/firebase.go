package storage

import (
	"context"
	"fmt"
	"io"

	"storefront/internal/config"
	"storefront/internal/model"

	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// openWriter opens a writer for a new object with the given content type.
type openWriter func(ctx context.Context, name, contentType string) io.WriteCloser

type firebaseStore struct {
	open   openWriter
	bucket string
	logger zerolog.Logger
}

// NewFirebaseStore creates a Store writing objects to a Firebase Storage bucket.
func NewFirebaseStore(ctx context.Context, cfg config.FirebaseConfig, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "firebase-image-store").Logger()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase bucket: %w", err)
	}

	logger.Info().Str("bucket", cfg.Bucket).Msg("firebase image store initialised")

	open := func(ctx context.Context, name, contentType string) io.WriteCloser {
		w := bucket.Object(name).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}

	return &firebaseStore{open: open, bucket: cfg.Bucket, logger: logger}, nil
}

func (s *firebaseStore) Upload(ctx context.Context, file model.Upload) (string, error) {
	name := objectName("images/", file.Filename)

	w := s.open(ctx, name, file.ContentType)
	if _, err := w.Write(file.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	// The object is only committed on Close.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to commit object %s: %w", name, err)
	}

	s.logger.Debug().Str("object", name).Msg("image uploaded")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}
