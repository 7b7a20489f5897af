package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/permissions"
	manualvalidation "github.com/goliatone/go-manual/internal/validation"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/google/uuid"
)

// Service manages uploaded files.
type Service interface {
	List(ctx context.Context) ([]*File, error)
	Get(ctx context.Context, id uuid.UUID) (*File, error)
	Upload(ctx context.Context, input UploadInput) (*File, error)
	DownloadURL(ctx context.Context, key string) (string, error)
	Open(ctx context.Context, id uuid.UUID) (*Download, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	ErrFileRepositoryRequired = errors.New("files: repository required")
	ErrBlobStoreRequired      = errors.New("files: blob store required")
	ErrBodyRequired           = errors.New("files: body required")
	ErrFileTooLarge           = errors.New("files: file exceeds maximum size")
	ErrExtensionNotAllowed    = errors.New("files: file extension not allowed")
	ErrFileKeyExists          = errors.New("files: file key already exists")
)

const (
	scope          = "files"
	defaultMaxSize = 50 << 20
)

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// URLBuilder returns the public retrieval URL of a file.
type URLBuilder interface {
	FileURL(id uuid.UUID) (string, error)
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithIDGenerator overrides the default ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxSize caps the size of uploaded bodies in bytes.
func WithMaxSize(size int64) ServiceOption {
	return func(s *service) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithAllowedExtensions restricts uploads to the given extensions. An empty
// list accepts any extension.
func WithAllowedExtensions(exts ...string) ServiceOption {
	return func(s *service) {
		s.allowed = map[string]struct{}{}
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.allowed[ext] = struct{}{}
		}
	}
}

// WithURLBuilder sets the builder of download URLs.
func WithURLBuilder(builder URLBuilder) ServiceOption {
	return func(s *service) {
		if builder != nil {
			s.urls = builder
		}
	}
}

type service struct {
	repo    FileRepository
	blobs   BlobStore
	urls    URLBuilder
	logger  interfaces.Logger
	id      IDGenerator
	now     func() time.Time
	maxSize int64
	allowed map[string]struct{}
}

// NewService constructs a files service instance.
func NewService(repo FileRepository, blobs BlobStore, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrFileRepositoryRequired)
	}
	if blobs == nil {
		panic(ErrBlobStoreRequired)
	}
	s := &service{
		repo:    repo,
		blobs:   blobs,
		urls:    pathURLs{},
		logger:  logging.NoOp(),
		id:      uuid.New,
		now:     time.Now,
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) List(ctx context.Context) ([]*File, error) {
	if err := permissions.Require(ctx, permissions.FilesRead); err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := cloneFiles(records)
	sortFiles(out)
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*File, error) {
	if err := permissions.Require(ctx, permissions.FilesRead); err != nil {
		return nil, err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneFile(record), nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*File, error) {
	if err := permissions.Require(ctx, permissions.FilesCreate); err != nil {
		return nil, err
	}
	input.Name = cleanName(input.Name)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.Name, manualvalidation.Title...),
		validation.Field(&input.UploadedBy, manualvalidation.RequiredUUID),
	)); err != nil {
		return nil, err
	}
	if input.Body == nil {
		return nil, ErrBodyRequired
	}
	ext := strings.ToLower(path.Ext(input.Name))
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[ext]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
		}
	}

	now := s.now().UTC()
	id := s.id()
	key := fmt.Sprintf("uploads/%s/%d-%s", input.UploadedBy, now.UnixMilli(), input.Name)

	blob, err := s.blobs.Put(ctx, key, io.LimitReader(input.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if blob.Size > s.maxSize {
		_ = s.blobs.Remove(ctx, key)
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, s.maxSize)
	}

	url, err := s.urls.FileURL(id)
	if err != nil {
		_ = s.blobs.Remove(ctx, key)
		return nil, fmt.Errorf("files: build url: %w", err)
	}

	mimeType := normalizeOptional(input.MimeType)
	if mimeType == nil {
		if detected := mime.TypeByExtension(ext); detected != "" {
			mimeType = &detected
		}
	}
	size := blob.Size
	record := &File{
		ID:          id,
		Key:         key,
		URL:         url,
		Name:        input.Name,
		MimeType:    mimeType,
		Size:        &size,
		Checksum:    blob.Checksum,
		UploadedBy:  input.UploadedBy,
		Description: normalizeOptional(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		_ = s.blobs.Remove(ctx, key)
		return nil, err
	}
	s.logger.Info("files.uploaded", "file_id", created.ID, "key", created.Key, "size", size)
	return cloneFile(created), nil
}

func (s *service) DownloadURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", manualvalidation.New(scope, "key", "cannot be blank")
	}
	record, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return "", err
	}
	return s.urls.FileURL(record.ID)
}

func (s *service) Open(ctx context.Context, id uuid.UUID) (*Download, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.blobs.Open(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	return &Download{File: cloneFile(record), Body: body}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := permissions.Require(ctx, permissions.FilesDelete); err != nil {
		return err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(ctx, record.Key); err != nil {
		s.logger.Warn("files.blob.remove_failed", "file_id", id, "key", record.Key, "error", err)
	}
	s.logger.Info("files.deleted", "file_id", id, "key", record.Key)
	return nil
}

// cleanName strips any directory part a client may send with the name.
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

type pathURLs struct{}

func (pathURLs) FileURL(id uuid.UUID) (string, error) {
	return "/files/" + id.String(), nil
}
