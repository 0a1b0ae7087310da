package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore fails uploads whose filename starts with "bad".
type fakeStore struct {
	mu       sync.Mutex
	uploaded []string
}

func (f *fakeStore) Upload(_ context.Context, file model.Upload) (string, error) {
	if strings.HasPrefix(file.Filename, "bad") {
		return "", errors.New("upload rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, file.Filename)
	return "https://cdn.test/" + file.Filename, nil
}

func TestUploadAll(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "All succeed in order",
			files:    []string{"a.png", "b.png", "c.png", "d.png", "e.png"},
			expected: []string{"https://cdn.test/a.png", "https://cdn.test/b.png", "https://cdn.test/c.png", "https://cdn.test/d.png", "https://cdn.test/e.png"},
		},
		{
			name:     "Failures are dropped",
			files:    []string{"bad1.png", "b.png", "bad2.png", "d.png"},
			expected: []string{"https://cdn.test/b.png", "https://cdn.test/d.png"},
		},
		{
			name:     "All fail",
			files:    []string{"bad1.png", "bad2.png"},
			expected: []string{},
		},
		{
			name:     "No files",
			files:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploads := make([]model.Upload, len(tt.files))
			for i, name := range tt.files {
				uploads[i] = model.Upload{Filename: name, ContentType: "image/png", Data: []byte("x")}
			}

			urls := UploadAll(context.Background(), &fakeStore{}, uploads, zerolog.Nop())

			assert.Equal(t, tt.expected, urls)
		})
	}
}

func TestNew_DisabledBackend(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Backend: "none"}, zerolog.Nop())
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), model.Upload{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	name := objectName("images/", "Photo.JPG")

	assert.True(t, strings.HasPrefix(name, "images/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, objectName("images/", "Photo.JPG"))
}

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Upload(t *testing.T) {
	t.Run("Default public URL", func(t *testing.T) {
		putter := &fakePutter{}
		store := newS3Store(putter, config.S3Config{Bucket: "shop", Region: "eu-west-1", Prefix: "images/"}, zerolog.Nop())

		url, err := store.Upload(context.Background(), model.Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("data")})

		require.NoError(t, err)
		require.NotNil(t, putter.input)
		assert.Equal(t, "shop", *putter.input.Bucket)
		assert.Equal(t, "image/png", *putter.input.ContentType)
		assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com/"+*putter.input.Key, url)
	})

	t.Run("Custom public URL", func(t *testing.T) {
		putter := &fakePutter{}
		store := newS3Store(putter, config.S3Config{Bucket: "shop", PublicBaseURL: "https://cdn.shop.test/"}, zerolog.Nop())

		url, err := store.Upload(context.Background(), model.Upload{Filename: "a.png"})

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.shop.test/"+*putter.input.Key, url)
	})

	t.Run("Put failure", func(t *testing.T) {
		store := newS3Store(&fakePutter{err: errors.New("access denied")}, config.S3Config{Bucket: "shop"}, zerolog.Nop())

		_, err := store.Upload(context.Background(), model.Upload{Filename: "a.png"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

type bufferWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func TestFirebaseStore_Upload(t *testing.T) {
	t.Run("Commits on close", func(t *testing.T) {
		w := &bufferWriter{}
		var gotType string
		store := &firebaseStore{
			open: func(_ context.Context, _, contentType string) io.WriteCloser {
				gotType = contentType
				return w
			},
			bucket: "shop.appspot.com",
			logger: zerolog.Nop(),
		}

		url, err := store.Upload(context.Background(), model.Upload{Filename: "a.webp", ContentType: "image/webp", Data: []byte("data")})

		require.NoError(t, err)
		assert.True(t, w.closed)
		assert.Equal(t, "data", w.String())
		assert.Equal(t, "image/webp", gotType)
		assert.True(t, strings.HasPrefix(url, "https://storage.googleapis.com/shop.appspot.com/images/"))
	})

	t.Run("Close failure", func(t *testing.T) {
		store := &firebaseStore{
			open: func(context.Context, string, string) io.WriteCloser {
				return &bufferWriter{closeErr: errors.New("quota exceeded")}
			},
			logger: zerolog.Nop(),
		}

		_, err := store.Upload(context.Background(), model.Upload{Filename: "a.png"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}
