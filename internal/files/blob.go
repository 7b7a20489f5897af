package files

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// BlobStore keeps uploaded bytes addressed by key.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader) (Blob, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Blob describes bytes written by Put.
type Blob struct {
	Key      string
	Size     int64
	Checksum string
}

// AferoBlobStore stores blobs on an afero filesystem.
type AferoBlobStore struct {
	fs afero.Fs
}

// NewAferoBlobStore wraps fs.
func NewAferoBlobStore(fs afero.Fs) *AferoBlobStore {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return &AferoBlobStore{fs: fs}
}

// NewDirBlobStore stores blobs below root on the OS filesystem.
func NewDirBlobStore(root string) *AferoBlobStore {
	return NewAferoBlobStore(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewMemoryBlobStore stores blobs in memory.
func NewMemoryBlobStore() *AferoBlobStore {
	return NewAferoBlobStore(afero.NewMemMapFs())
}

func (s *AferoBlobStore) Put(ctx context.Context, key string, body io.Reader) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	name := path.Clean("/" + key)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return Blob{}, fmt.Errorf("files: create blob dir: %w", err)
	}
	file, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return Blob{}, fmt.Errorf("%w: %s", ErrFileKeyExists, key)
		}
		return Blob{}, fmt.Errorf("files: create blob: %w", err)
	}

	hasher := blake3.New()
	size, copyErr := io.Copy(io.MultiWriter(file, hasher), body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(name)
		return Blob{}, fmt.Errorf("files: write blob: %w", errors.Join(copyErr, closeErr))
	}
	return Blob{Key: key, Size: size, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func (s *AferoBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	file, err := s.fs.Open(path.Clean("/" + key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Resource: "blob", Key: key}
		}
		return nil, fmt.Errorf("files: open blob: %w", err)
	}
	return file, nil
}

func (s *AferoBlobStore) Remove(_ context.Context, key string) error {
	err := s.fs.Remove(path.Clean("/" + key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("files: remove blob: %w", err)
	}
	return nil
}
