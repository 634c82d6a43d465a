package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"studio-storefront/internal/logger"
	"studio-storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memoryFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memoryFileStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = data
	return "/uploads/" + key, nil
}

type formFile struct {
	name string
	data []byte
}

// fileHeaders builds real multipart headers the way echo would hand them over.
func fileHeaders(t *testing.T, files ...formFile) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func png(size int) []byte {
	return append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, size)...)
}

func TestUpload_StoresAllowedFiles(t *testing.T) {
	store := &memoryFileStore{}
	svc := NewUploadService(store, 1<<20, 10, logger.Discard())

	orderID, results, err := svc.Upload(context.Background(), UploadRequest{
		CustomerName: "Kenji",
		OrderID:      "order-1",
		Files: fileHeaders(t,
			formFile{"crest logo.png", png(100)},
			formFile{"notes.txt", []byte("plain text notes")},
		),
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", orderID)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK())
	assert.Equal(t, "/uploads/orders/order-1/1-crest_logo.png", results[0].URL)
	assert.Equal(t, "crest logo.png", results[0].Name)
	assert.Equal(t, "image/png", results[0].Type)
	assert.Equal(t, int64(len(png(100))), results[0].Size)

	assert.False(t, results[1].OK())
	assert.Equal(t, "notes.txt", results[1].Name)
	assert.Contains(t, results[1].Error, "only images")

	assert.Len(t, store.files, 1)
}

func TestUpload_GeneratesOrderID(t *testing.T) {
	svc := NewUploadService(&memoryFileStore{}, 1<<20, 10, logger.Discard())

	orderID, _, err := svc.Upload(context.Background(), UploadRequest{
		Files: fileHeaders(t, formFile{"a.png", png(1)}),
	})
	require.NoError(t, err)
	assert.Len(t, orderID, 36)
}

func TestUpload_Limits(t *testing.T) {
	svc := NewUploadService(&memoryFileStore{}, 64, 2, logger.Discard())
	ctx := context.Background()

	_, _, err := svc.Upload(ctx, UploadRequest{})
	assert.ErrorIs(t, err, ErrNoFiles)

	_, _, err = svc.Upload(ctx, UploadRequest{Files: fileHeaders(t,
		formFile{"1.png", png(1)}, formFile{"2.png", png(1)}, formFile{"3.png", png(1)},
	)})
	assert.ErrorIs(t, err, ErrTooManyFiles)

	_, results, err := svc.Upload(ctx, UploadRequest{Files: fileHeaders(t,
		formFile{"big.png", png(500)}, formFile{"small.png", png(10)},
	)})
	require.NoError(t, err)
	assert.Contains(t, results[0].Error, "size limit")
	assert.True(t, results[1].OK())
}

func TestUpload_AllRejected(t *testing.T) {
	svc := NewUploadService(&memoryFileStore{err: errors.New("disk full")}, 1<<20, 10, logger.Discard())

	_, results, err := svc.Upload(context.Background(), UploadRequest{Files: fileHeaders(t,
		formFile{"a.png", png(1)},
	)})
	assert.ErrorIs(t, err, ErrNoFiles)
	require.Len(t, results, 1)
	assert.Equal(t, "disk full", results[0].Error)
}

func TestUpload_ConvertsToCartFile(t *testing.T) {
	r := UploadResult{URL: "/uploads/x.png", Name: "x.png", Type: "image/png", Size: 3}
	f := r.File(2)

	assert.Equal(t, "/uploads/x.png", f.URL)
	assert.Equal(t, 2, f.SectionIndex)
	assert.True(t, strings.HasSuffix(f.Name, ".png"))
}

func TestUpload_CapsLongFilenames(t *testing.T) {
	store := &memoryFileStore{}
	svc := NewUploadService(store, 1<<20, 10, logger.Discard())
	long := strings.Repeat("tournament_reference_photo_", 8) + ".png"

	_, results, err := svc.Upload(context.Background(), UploadRequest{
		OrderID: "order-1",
		Files:   fileHeaders(t, formFile{long, png(1)}),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Name, storage.MaxFilenameLength)
	assert.True(t, strings.HasSuffix(results[0].Name, ".png"))
	for key := range store.files {
		assert.LessOrEqual(t, len(path.Base(key)), storage.MaxFilenameLength+len("1-"))
	}
}
