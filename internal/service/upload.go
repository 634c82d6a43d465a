package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"studio-storefront/internal/model"
	"studio-storefront/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const uploadConcurrency = 4

var (
	errFileTooLarge    = errors.New("file exceeds size limit")
	errUnsupportedType = errors.New("only images and mp4 videos are accepted")
)

type UploadRequest struct {
	CustomerName string
	OrderID      string
	Files        []*multipart.FileHeader
}

// UploadResult is the outcome for one file; Error is set instead of URL when
// that file was rejected.
type UploadResult struct {
	URL   string `json:"url,omitempty"`
	Name  string `json:"name"`
	Size  int64  `json:"size,omitempty"`
	Type  string `json:"type,omitempty"`
	Error string `json:"error,omitempty"`
}

func (r UploadResult) OK() bool { return r.Error == "" }

// File converts a successful result into a cart file reference.
func (r UploadResult) File(section int) model.UploadedFile {
	return model.UploadedFile{URL: r.URL, Name: r.Name, Type: r.Type, Size: r.Size, SectionIndex: section}
}

type UploadService interface {
	Upload(ctx context.Context, req UploadRequest) (orderID string, results []UploadResult, err error)
}

type uploadServiceImpl struct {
	store       storage.FileStore
	maxFileSize int64
	maxFiles    int
	log         *slog.Logger
}

func NewUploadService(store storage.FileStore, maxFileSize int64, maxFiles int, log *slog.Logger) UploadService {
	if log == nil {
		log = slog.Default()
	}
	return &uploadServiceImpl{
		store:       store,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
		log:         log,
	}
}

// Upload stores every file concurrently. A rejected file is reported in its
// result and never fails the batch.
func (s *uploadServiceImpl) Upload(ctx context.Context, req UploadRequest) (string, []UploadResult, error) {
	if len(req.Files) == 0 {
		return "", nil, ErrNoFiles
	}
	if len(req.Files) > s.maxFiles {
		return "", nil, fmt.Errorf("%w: at most %d files per upload", ErrTooManyFiles, s.maxFiles)
	}

	orderID := storage.SafeFilename(strings.TrimSpace(req.OrderID), "")
	if orderID == "" {
		orderID = uuid.NewString()
	}

	results := make([]UploadResult, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, fh := range req.Files {
		g.Go(func() error {
			results[i] = s.uploadOne(gctx, orderID, i, fh)
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	s.log.Info("files uploaded", "order_id", orderID, "customer", req.CustomerName, "stored", ok, "rejected", len(results)-ok)

	if ok == 0 {
		return orderID, results, ErrNoFiles
	}
	return orderID, results, nil
}

func (s *uploadServiceImpl) uploadOne(ctx context.Context, orderID string, index int, fh *multipart.FileHeader) UploadResult {
	name := storage.SafeFilename(fh.Filename, fmt.Sprintf("file_%d", index+1))
	res := UploadResult{Name: storage.TruncateFilename(strings.TrimSpace(fh.Filename), storage.MaxFilenameLength)}
	if res.Name == "" {
		res.Name = name
	}

	fail := func(err error) UploadResult {
		s.log.Warn("file rejected", "order_id", orderID, "file", res.Name, "error", err)
		res.Error = err.Error()
		return res
	}

	if s.maxFileSize > 0 && fh.Size > s.maxFileSize {
		return fail(errFileTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fail(fmt.Errorf("read upload: %w", err))
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !allowedContentType(contentType) {
		return fail(fmt.Errorf("%w: %s", errUnsupportedType, contentType))
	}

	// the header size comes from the client; bound what is actually read
	body := io.MultiReader(bytes.NewReader(head), f)
	counter := &countingReader{r: body}
	var reader io.Reader = counter
	if s.maxFileSize > 0 {
		reader = &limitedReader{r: counter, remaining: s.maxFileSize}
	}

	key := fmt.Sprintf("orders/%s/%d-%s", orderID, index+1, name)
	url, err := s.store.Put(ctx, key, reader, contentType)
	if err != nil {
		return fail(err)
	}

	res.URL = url
	res.Type = contentType
	res.Size = counter.n
	return res
}

func allowedContentType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "video/mp4"
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// limitedReader fails instead of truncating once more than remaining bytes
// have been read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errFileTooLarge
	}
	return n, err
}
