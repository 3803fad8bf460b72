package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/bookstore-api/internal/patch"
	"github.com/snnyvrz/bookstore-api/internal/repository"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/validation"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouterWithServices(books BookService, authors AuthorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterJSONFieldNames()

	r := gin.New()

	if books != nil {
		NewBookHandler(books, discardLogger()).RegisterRoutes(r.Group(""))
	}
	if authors != nil {
		NewAuthorHandler(authors, discardLogger()).RegisterRoutes(r.Group(""))
	}

	return r
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	bookRepo := repository.NewGormBookRepository(db)
	authorRepo := repository.NewAuthorRepository(db)

	return setupRouterWithServices(
		service.NewBookService(bookRepo, authorRepo),
		service.NewAuthorService(authorRepo),
	)
}

func doRequest(t *testing.T, r http.Handler, method, path, contentType string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) validation.ErrorResponse {
	t.Helper()

	var resp validation.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v, body=%s", err, w.Body.String())
	}
	return resp
}

type fakeBookService struct {
	GetAllFn     func(ctx context.Context) ([]service.BookRead, error)
	GetByIDFn    func(ctx context.Context, id int64) (service.BookRead, error)
	CreateFn     func(ctx context.Context, in service.BookCreate) (service.BookRead, error)
	UpdateFn     func(ctx context.Context, id int64, in service.BookUpdate) error
	ApplyPatchFn func(ctx context.Context, id int64, ops []patch.Operation) error
	DeleteFn     func(ctx context.Context, id int64) error
}

func (f *fakeBookService) GetAll(ctx context.Context) ([]service.BookRead, error) {
	if f.GetAllFn != nil {
		return f.GetAllFn(ctx)
	}
	return []service.BookRead{}, nil
}

func (f *fakeBookService) GetByID(ctx context.Context, id int64) (service.BookRead, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return service.BookRead{}, service.ErrNotFound
}

func (f *fakeBookService) Create(ctx context.Context, in service.BookCreate) (service.BookRead, error) {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, in)
	}
	return service.BookRead{}, nil
}

func (f *fakeBookService) Update(ctx context.Context, id int64, in service.BookUpdate) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, in)
	}
	return nil
}

func (f *fakeBookService) ApplyPatch(ctx context.Context, id int64, ops []patch.Operation) error {
	if f.ApplyPatchFn != nil {
		return f.ApplyPatchFn(ctx, id, ops)
	}
	return nil
}

func (f *fakeBookService) Delete(ctx context.Context, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}
