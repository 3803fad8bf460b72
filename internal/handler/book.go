package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/bookstore-api/internal/patch"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/validation"
)

const (
	maxPatchBytes = 1 << 20

	contentTypeJSONPatch  = "application/json-patch+json"
	contentTypeMergePatch = "application/merge-patch+json"
)

type BookService interface {
	GetAll(ctx context.Context) ([]service.BookRead, error)
	GetByID(ctx context.Context, id int64) (service.BookRead, error)
	Create(ctx context.Context, in service.BookCreate) (service.BookRead, error)
	Update(ctx context.Context, id int64, in service.BookUpdate) error
	ApplyPatch(ctx context.Context, id int64, ops []patch.Operation) error
	Delete(ctx context.Context, id int64) error
}

type BookHandler struct {
	svc BookService
	responder
}

func NewBookHandler(svc BookService, log *slog.Logger) *BookHandler {
	return &BookHandler{
		svc:       svc,
		responder: responder{prefix: "BOOK", noun: "book", log: orDefault(log)},
	}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/book")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBookByID)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.UpdateBook)
		books.PATCH("/:id", h.PatchBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

// ListBooks godoc
// @Summary      List books
// @Description  Get all books ordered by id
// @Tags         books
// @Produce      json
// @Success      200  {object}  ListBooksResponse
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.fail(c, err, "BOOK_LIST_FAILED", "failed to fetch books")
		return
	}

	c.JSON(http.StatusOK, ListBooksResponse{Data: books})
}

// GetBookByID godoc
// @Summary      Get a book by ID
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  BookResponse
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	id, ok := parseID(c, "INVALID_BOOK_ID", "invalid book id")
	if !ok {
		return
	}

	book, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "BOOK_FETCH_FAILED", "failed to fetch book")
		return
	}

	c.JSON(http.StatusOK, BookResponse{Data: book})
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Create a new book. The id is assigned by the server.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BookCreate         true  "Book to create"
// @Success      201      {object}  BookResponse
// @Header       201      {string}  Location  "URL of the created book"
// @Failure      400      {object}  validation.ErrorResponse   "Validation error"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req service.BookCreate
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	book, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "BOOK_CREATE_FAILED", "failed to create book")
		return
	}

	c.Header("Location", c.FullPath()+"/"+strconv.FormatInt(book.ID, 10))
	c.JSON(http.StatusCreated, BookResponse{Data: book})
}

// UpdateBook godoc
// @Summary      Replace a book
// @Description  Replace every mutable field of a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Book ID"
// @Param        payload  body      service.BookUpdate   true  "New field values"
// @Success      204      {string}  string  "No content"
// @Failure      400      {object}  validation.ErrorResponse   "Invalid ID or payload"
// @Failure      404      {object}  validation.ErrorResponse   "Book not found"
// @Failure      409      {object}  validation.ErrorResponse   "Concurrent modification"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c, "INVALID_BOOK_ID", "invalid book id")
	if !ok {
		return
	}

	var req service.BookUpdate
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, req); err != nil {
		h.fail(c, err, "BOOK_UPDATE_FAILED", "failed to update book")
		return
	}

	c.Status(http.StatusNoContent)
}

// PatchBook godoc
// @Summary      Patch a book
// @Description  Apply a JSON Patch (application/json-patch+json) or JSON Merge Patch
// @Description  (application/merge-patch+json) document. Nothing is written unless
// @Description  every operation succeeds and the result is valid.
// @Tags         books
// @Accept       json
// @Accept       application/json-patch+json
// @Accept       application/merge-patch+json
// @Produce      json
// @Param        id       path      int               true  "Book ID"
// @Param        payload  body      []PatchOperation  true  "Patch document"
// @Success      204      {string}  string  "No content"
// @Failure      400      {object}  validation.ErrorResponse   "Invalid ID, document or resulting book"
// @Failure      404      {object}  validation.ErrorResponse   "Book not found"
// @Failure      409      {object}  validation.ErrorResponse   "Concurrent modification"
// @Failure      413      {object}  validation.ErrorResponse   "Document too large"
// @Failure      415      {object}  validation.ErrorResponse   "Unsupported content type"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book/{id} [patch]
func (h *BookHandler) PatchBook(c *gin.Context) {
	id, ok := parseID(c, "INVALID_BOOK_ID", "invalid book id")
	if !ok {
		return
	}

	ops, ok := readPatch(c)
	if !ok {
		return
	}

	if err := h.svc.ApplyPatch(c.Request.Context(), id, ops); err != nil {
		h.fail(c, err, "BOOK_PATCH_FAILED", "failed to patch book")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /book/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c, "INVALID_BOOK_ID", "invalid book id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "BOOK_DELETE_FAILED", "failed to delete book")
		return
	}

	c.Status(http.StatusNoContent)
}

// readPatch decodes the request body according to its content type.
func readPatch(c *gin.Context) ([]patch.Operation, bool) {
	decode := patch.Decode
	switch c.ContentType() {
	case contentTypeMergePatch:
		decode = patch.DecodeMerge
	case contentTypeJSONPatch, "application/json", "":
	default:
		writeError(c, http.StatusUnsupportedMediaType,
			"UNSUPPORTED_MEDIA_TYPE",
			"patch documents must be application/json-patch+json or application/merge-patch+json",
		)
		return nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPatchBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge,
				"PATCH_TOO_LARGE",
				"patch document is too large",
			)
			return nil, false
		}
		writeError(c, http.StatusBadRequest,
			"INVALID_REQUEST_BODY",
			"failed to read request body",
		)
		return nil, false
	}

	ops, err := decode(body)
	if err != nil {
		if errors.Is(err, patch.ErrEmptyDocument) {
			writeError(c, http.StatusBadRequest,
				"EMPTY_PATCH_DOCUMENT",
				err.Error(),
			)
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, validation.ErrorResponse{
			Code:    "INVALID_PATCH_DOCUMENT",
			Message: "invalid patch document",
			Errors: []validation.FieldError{
				{Field: "", Rule: "syntax", Message: err.Error()},
			},
		})
		return nil, false
	}

	return ops, true
}
