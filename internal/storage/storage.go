// Package storage uploads product and category images to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrDisabled is returned by the store used when no backend is configured.
var ErrDisabled = errors.New("image storage is disabled")

// uploadConcurrency bounds parallel uploads for a single request.
const uploadConcurrency = 3

// Store persists an uploaded file and returns its public URL.
type Store interface {
	Upload(ctx context.Context, file model.Upload) (string, error)
}

// New builds the Store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(ctx, cfg.S3, logger)
	case "firebase":
		return NewFirebaseStore(ctx, cfg.Firebase, logger)
	case "none", "":
		logger.Warn().Msg("image storage disabled, uploads will be dropped")
		return disabledStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, model.Upload) (string, error) {
	return "", ErrDisabled
}

// objectName builds a collision-free key, keeping the original extension.
func objectName(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return prefix + uuid.NewString() + ext
}

// UploadAll uploads files concurrently and returns the URLs of those that
// succeeded, in input order. A failed upload is logged and dropped.
func UploadAll(ctx context.Context, store Store, files []model.Upload, logger zerolog.Logger) []string {
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, file := range files {
		g.Go(func() error {
			url, err := store.Upload(gctx, file)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("filename", file.Filename).
					Msg("image upload failed, skipping")
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	uploaded := make([]string, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			uploaded = append(uploaded, url)
		}
	}
	return uploaded
}
