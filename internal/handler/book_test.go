package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"github.com/snnyvrz/bookstore-api/internal/patch"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/testutil"
	"gorm.io/gorm"
)

func seedOrwell(t *testing.T, db *gorm.DB) model.Book {
	t.Helper()

	return testutil.SeedBook(t, db, model.Book{
		Title:  "1984",
		Author: "Orwell",
		Year:   1949,
		Price:  15.99,
	})
}

func getBook(t *testing.T, r http.Handler, id int64) service.BookRead {
	t.Helper()

	w := doRequest(t, r, http.MethodGet, "/book/"+itoa(id), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp BookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestCreateBook_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	body := map[string]any{
		"id":     99,
		"title":  "Dune",
		"author": "Herbert",
		"year":   1965,
		"price":  12,
	}

	w := doRequest(t, router, http.MethodPost, "/book", "application/json", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp BookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Data.ID != 1 {
		t.Errorf("expected server-assigned id 1, got %d", resp.Data.ID)
	}
	if loc := w.Header().Get("Location"); loc != "/book/1" {
		t.Errorf("expected Location /book/1, got %q", loc)
	}

	got := getBook(t, router, 1)
	if got.Title != "Dune" || got.Author != "Herbert" || got.Year != 1965 || got.Price != 12 {
		t.Errorf("unexpected stored book: %+v", got)
	}
}

func TestCreateBook_ValidationError(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	body := map[string]any{
		"title":  strings.Repeat("x", 101),
		"author": "Herbert",
		"year":   1400,
		"price":  12,
	}

	w := doRequest(t, router, http.MethodPost, "/book", "application/json", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeError(t, w)
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("expected code VALIDATION_FAILED, got %q", resp.Code)
	}
	if len(resp.Errors) != 2 || resp.Errors[0].Field != "title" || resp.Errors[1].Field != "year" {
		t.Errorf("unexpected violations: %+v", resp.Errors)
	}

	var count int64
	db.Model(&model.Book{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no books stored, got %d", count)
	}
}

func TestCreateBook_UnknownAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	body := map[string]any{
		"title":     "Dune",
		"author":    "Herbert",
		"author_id": 77,
		"year":      1965,
		"price":     12,
	}

	w := doRequest(t, router, http.MethodPost, "/book", "application/json", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeError(t, w)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "author_id" {
		t.Errorf("expected violation on author_id, got %+v", resp.Errors)
	}
}

func TestCreateBook_InvalidJSON(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doRequest(t, router, http.MethodPost, "/book", "application/json", `{"title": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "INVALID_REQUEST_BODY" {
		t.Errorf("expected INVALID_REQUEST_BODY, got %q", resp.Code)
	}
}

func TestListBooks(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doRequest(t, router, http.MethodGet, "/book", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"data":[]}` {
		t.Errorf("expected empty data array, got %s", w.Body.String())
	}

	seedOrwell(t, db)
	seedOrwell(t, db)

	w = doRequest(t, router, http.MethodGet, "/book", "", nil)

	var resp ListBooksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].ID != 1 || resp.Data[1].ID != 2 {
		t.Errorf("unexpected list: %+v", resp.Data)
	}
}

func TestGetBookByID_Errors(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	cases := map[string]struct {
		path   string
		status int
		code   string
	}{
		"not found":   {"/book/999", http.StatusNotFound, "BOOK_NOT_FOUND"},
		"not integer": {"/book/abc", http.StatusBadRequest, "INVALID_BOOK_ID"},
		"zero":        {"/book/0", http.StatusBadRequest, "INVALID_BOOK_ID"},
		"negative":    {"/book/-3", http.StatusBadRequest, "INVALID_BOOK_ID"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tc.path, "", nil)
			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			if resp := decodeError(t, w); resp.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Code)
			}
		})
	}
}

func TestUpdateBook(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	book := seedOrwell(t, db)

	body := map[string]any{
		"id":     500,
		"title":  "Homage to Catalonia",
		"author": "Orwell",
		"year":   1938,
		"price":  9.5,
	}

	w := doRequest(t, router, http.MethodPut, "/book/"+itoa(book.ID), "application/json", body)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	got := getBook(t, router, book.ID)
	if got.ID != book.ID || got.Title != "Homage to Catalonia" || got.Year != 1938 || got.Price != 9.5 {
		t.Errorf("unexpected book after update: %+v", got)
	}
	if got.Version != 2 {
		t.Errorf("expected version 2, got %d", got.Version)
	}

	w = doRequest(t, router, http.MethodPut, "/book/999", "application/json", body)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for missing book, got %d", w.Code)
	}
}

func TestPatchBook_JSONPatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	book := seedOrwell(t, db)

	doc := `[{"op": "replace", "path": "/title", "value": "Animal Farm"}]`

	w := doRequest(t, router, http.MethodPatch, "/book/"+itoa(book.ID), "application/json-patch+json", doc)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	got := getBook(t, router, book.ID)
	if got.Title != "Animal Farm" {
		t.Errorf("expected title Animal Farm, got %q", got.Title)
	}
	if got.Price != 15.99 || got.Year != 1949 || got.Author != "Orwell" {
		t.Errorf("untargeted fields changed: %+v", got)
	}
}

func TestPatchBook_MergePatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	author := testutil.SeedAuthor(t, db, "George", "Orwell")
	book := seedOrwell(t, db)

	doc := `{"author_id": ` + itoa(author.ID) + `, "price": "11.25"}`
	w := doRequest(t, router, http.MethodPatch, "/book/"+itoa(book.ID), "application/merge-patch+json", doc)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	got := getBook(t, router, book.ID)
	if got.AuthorID == nil || *got.AuthorID != author.ID || got.Price != 11.25 {
		t.Fatalf("unexpected book after merge patch: %+v", got)
	}

	w = doRequest(t, router, http.MethodPatch, "/book/"+itoa(book.ID), "application/merge-patch+json", `{"author_id": null}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}
	if got := getBook(t, router, book.ID); got.AuthorID != nil {
		t.Errorf("expected author_id cleared, got %d", *got.AuthorID)
	}
}

func TestPatchBook_InvalidResultIsRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	book := seedOrwell(t, db)

	doc := `[
		{"op": "replace", "path": "/title", "value": "` + strings.Repeat("x", 101) + `"},
		{"op": "replace", "path": "/isbn", "value": "123"},
		{"op": "replace", "path": "/year", "value": "soon"}
	]`

	w := doRequest(t, router, http.MethodPatch, "/book/"+itoa(book.ID), "application/json-patch+json", doc)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeError(t, w)
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %q", resp.Code)
	}
	if len(resp.Errors) != 3 {
		t.Fatalf("expected 3 violations, got %+v", resp.Errors)
	}

	var stored model.Book
	if err := db.First(&stored, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("failed to load book: %v", err)
	}
	if stored.Title != "1984" || stored.Year != 1949 || stored.Version != 1 {
		t.Errorf("stored book changed: %+v", stored)
	}
}

func TestPatchBook_DocumentErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	book := seedOrwell(t, db)
	path := "/book/" + itoa(book.ID)

	cases := map[string]struct {
		path        string
		contentType string
		body        string
		status      int
		code        string
	}{
		"empty body":      {path, "application/json-patch+json", "", http.StatusBadRequest, "EMPTY_PATCH_DOCUMENT"},
		"null body":       {path, "application/json-patch+json", "null", http.StatusBadRequest, "EMPTY_PATCH_DOCUMENT"},
		"null merge":      {path, "application/merge-patch+json", "null", http.StatusBadRequest, "EMPTY_PATCH_DOCUMENT"},
		"not an array":    {path, "application/json-patch+json", `{"title": "x"}`, http.StatusBadRequest, "INVALID_PATCH_DOCUMENT"},
		"malformed":       {path, "application/json", `[{"op": `, http.StatusBadRequest, "INVALID_PATCH_DOCUMENT"},
		"wrong media":     {path, "text/plain", `[]`, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		"missing book":    {"/book/999", "application/json-patch+json", `[]`, http.StatusNotFound, "BOOK_NOT_FOUND"},
		"invalid book id": {"/book/x", "application/json-patch+json", `[]`, http.StatusBadRequest, "INVALID_BOOK_ID"},
		"too large": {path, "application/json-patch+json",
			`[{"op":"replace","path":"/title","value":"` + strings.Repeat("x", maxPatchBytes) + `"}]`,
			http.StatusRequestEntityTooLarge, "PATCH_TOO_LARGE"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPatch, tc.path, tc.contentType, tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d, body=%s", tc.status, w.Code, w.Body.String())
			}
			if resp := decodeError(t, w); resp.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Code)
			}
		})
	}
}

func TestPatchBook_ConflictAndServerError(t *testing.T) {
	svc := &fakeBookService{}
	router := setupRouterWithServices(svc, nil)

	svc.ApplyPatchFn = func(ctx context.Context, id int64, ops []patch.Operation) error {
		return service.ErrConflict
	}
	w := doRequest(t, router, http.MethodPatch, "/book/1", "application/json-patch+json", `[]`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_CONFLICT" {
		t.Errorf("expected BOOK_CONFLICT, got %q", resp.Code)
	}

	svc.ApplyPatchFn = func(ctx context.Context, id int64, ops []patch.Operation) error {
		return errors.New("db down")
	}
	w = doRequest(t, router, http.MethodPatch, "/book/1", "application/json-patch+json", `[]`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_PATCH_FAILED" {
		t.Errorf("expected BOOK_PATCH_FAILED, got %q", resp.Code)
	}
}

func TestListBooks_ServerError(t *testing.T) {
	svc := &fakeBookService{
		GetAllFn: func(ctx context.Context) ([]service.BookRead, error) {
			return nil, errors.New("db down")
		},
	}
	router := setupRouterWithServices(svc, nil)

	w := doRequest(t, router, http.MethodGet, "/book", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_LIST_FAILED" {
		t.Errorf("expected BOOK_LIST_FAILED, got %q", resp.Code)
	}
}

func TestDeleteBook(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	book := seedOrwell(t, db)

	w := doRequest(t, router, http.MethodDelete, "/book/"+itoa(book.ID), "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodGet, "/book/"+itoa(book.ID), "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodDelete, "/book/"+itoa(book.ID), "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", w.Code)
	}
}
