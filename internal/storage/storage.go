package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const defaultContentType = "application/octet-stream"

var (
	ErrUploadFailed = errors.New("upload_failed")
	ErrInvalidPath  = errors.New("invalid_path")
	ErrNotFound     = errors.New("not_found")
)

type UploadOptions struct {
	ContentType string
	// AddRandomSuffix defaults to true when nil.
	AddRandomSuffix *bool
}

type UploadResult struct {
	URL        string    `json:"url"`
	Pathname   string    `json:"pathname"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Object is an open stored object. Callers must close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Storage stores media in a gocloud bucket. Bucket errors are logged and never returned as-is.
type Storage struct {
	bucket        *blob.Bucket
	publicBaseURL string
	log           *zap.Logger
	clock         clock.Clock
	metrics       *obsmetrics.Metrics
}

func New(p Params) (*Storage, error) {
	bucket, err := blob.OpenBucket(context.Background(), p.Config.Storage.BucketURL)
	if err != nil {
		return nil, err
	}
	s := NewWithBucket(bucket, p.Config.Storage.PublicBaseURL, p.Log, p.Clock)
	s.metrics = p.Metrics

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return bucket.Close()
		},
	})
	return s, nil
}

func NewWithBucket(bucket *blob.Bucket, publicBaseURL string, log *zap.Logger, clk clock.Clock) *Storage {
	return &Storage{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log.Named("storage"),
		clock:         clk,
	}
}

func (s *Storage) Upload(ctx context.Context, content io.Reader, pathname string, opts UploadOptions) (*UploadResult, error) {
	key, err := cleanPath(pathname)
	if err != nil {
		return nil, err
	}
	if opts.AddRandomSuffix == nil || *opts.AddRandomSuffix {
		key = withRandomSuffix(key)
	}
	contentType := strings.TrimSpace(opts.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	// Cancelling the writer context aborts the write instead of committing a partial object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		s.log.Error("open writer failed", zap.String("pathname", key), zap.Error(err))
		s.metrics.RecordMediaOperation(ctx, "upload", "error", 0)
		return nil, ErrUploadFailed
	}
	size, err := io.Copy(w, content)
	if err != nil {
		cancel()
		_ = w.Close()
		s.log.Error("upload failed", zap.String("pathname", key), zap.Error(err))
		s.metrics.RecordMediaOperation(ctx, "upload", "error", 0)
		return nil, ErrUploadFailed
	}
	if err := w.Close(); err != nil {
		s.log.Error("upload commit failed", zap.String("pathname", key), zap.Error(err))
		s.metrics.RecordMediaOperation(ctx, "upload", "error", 0)
		return nil, ErrUploadFailed
	}

	s.metrics.RecordMediaOperation(ctx, "upload", "ok", size)
	return &UploadResult{
		URL:        s.URL(key),
		Pathname:   key,
		Size:       size,
		UploadedAt: s.clock.Now().UTC(),
	}, nil
}

// Delete reports whether the object was removed.
func (s *Storage) Delete(ctx context.Context, pathname string) bool {
	key, err := cleanPath(pathname)
	if err != nil {
		return false
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			s.log.Error("delete failed", zap.String("pathname", key), zap.Error(err))
		}
		s.metrics.RecordMediaOperation(ctx, "delete", "error", 0)
		return false
	}
	s.metrics.RecordMediaOperation(ctx, "delete", "ok", 0)
	return true
}

func (s *Storage) Exists(ctx context.Context, pathname string) bool {
	key, err := cleanPath(pathname)
	if err != nil {
		return false
	}
	ok, err := s.bucket.Exists(ctx, key)
	if err != nil {
		s.log.Warn("exists check failed", zap.String("pathname", key), zap.Error(err))
		return false
	}
	return ok
}

// List returns the pathnames under prefix, or an empty slice when listing fails.
func (s *Storage) List(ctx context.Context, prefix string) []string {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	out := []string{}
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			s.log.Error("list failed", zap.String("prefix", prefix), zap.Error(err))
			return []string{}
		}
		if obj.IsDir {
			continue
		}
		out = append(out, obj.Key)
	}
}

// Open returns a reader over a stored object.
func (s *Storage) Open(ctx context.Context, pathname string) (*Object, error) {
	key, err := cleanPath(pathname)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		s.log.Error("open failed", zap.String("pathname", key), zap.Error(err))
		return nil, ErrNotFound
	}
	return &Object{
		ReadCloser:  r,
		ContentType: r.ContentType(),
		Size:        r.Size(),
		ModTime:     r.ModTime(),
	}, nil
}

func (s *Storage) URL(pathname string) string {
	if s.publicBaseURL == "" {
		return "/" + pathname
	}
	return s.publicBaseURL + "/" + pathname
}

func cleanPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidPath
	}
	cleaned := strings.TrimLeft(path.Clean("/"+trimmed), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func withRandomSuffix(key string) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	id := strings.ToLower(ulid.Make().String())
	return base + "-" + id[len(id)-16:] + ext
}
