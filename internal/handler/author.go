package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/validation"
)

type AuthorService interface {
	GetAll(ctx context.Context) ([]service.AuthorRead, error)
	GetByID(ctx context.Context, id int64) (service.AuthorRead, error)
	Create(ctx context.Context, in service.AuthorCreate) (service.AuthorRead, error)
	Update(ctx context.Context, id int64, in service.AuthorUpdate) error
	Delete(ctx context.Context, id int64) error
}

type AuthorHandler struct {
	svc AuthorService
	responder
}

func NewAuthorHandler(svc AuthorService, log *slog.Logger) *AuthorHandler {
	return &AuthorHandler{
		svc:       svc,
		responder: responder{prefix: "AUTHOR", noun: "author", log: orDefault(log)},
	}
}

func (h *AuthorHandler) RegisterRoutes(r *gin.RouterGroup) {
	authors := r.Group("/author")
	{
		authors.GET("", h.ListAuthors)
		authors.GET("/:id", h.GetAuthorByID)
		authors.POST("", h.CreateAuthor)
		authors.PUT("/:id", h.UpdateAuthor)
		authors.DELETE("/:id", h.DeleteAuthor)
	}
}

// ListAuthors godoc
// @Summary      List authors
// @Description  Get all authors with their books
// @Tags         authors
// @Produce      json
// @Success      200  {object}  ListAuthorsResponse
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /author [get]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	authors, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.fail(c, err, "AUTHOR_LIST_FAILED", "failed to fetch authors")
		return
	}

	c.JSON(http.StatusOK, ListAuthorsResponse{Data: authors})
}

// GetAuthorByID godoc
// @Summary      Get an author by ID
// @Tags         authors
// @Produce      json
// @Param        id   path      int  true  "Author ID"
// @Success      200  {object}  AuthorResponse
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Author not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /author/{id} [get]
func (h *AuthorHandler) GetAuthorByID(c *gin.Context) {
	id, ok := parseID(c, "INVALID_AUTHOR_ID", "invalid author id")
	if !ok {
		return
	}

	author, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "AUTHOR_FETCH_FAILED", "failed to fetch author")
		return
	}

	c.JSON(http.StatusOK, AuthorResponse{Data: author})
}

// CreateAuthor godoc
// @Summary      Create an author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AuthorCreate       true  "Author to create"
// @Success      201      {object}  AuthorResponse
// @Header       201      {string}  Location  "URL of the created author"
// @Failure      400      {object}  validation.ErrorResponse   "Validation error"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /author [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req service.AuthorCreate
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	author, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "AUTHOR_CREATE_FAILED", "failed to create author")
		return
	}

	c.Header("Location", c.FullPath()+"/"+strconv.FormatInt(author.ID, 10))
	c.JSON(http.StatusCreated, AuthorResponse{Data: author})
}

// UpdateAuthor godoc
// @Summary      Replace an author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Author ID"
// @Param        payload  body      service.AuthorUpdate   true  "New field values"
// @Success      204      {string}  string  "No content"
// @Failure      400      {object}  validation.ErrorResponse   "Invalid ID or payload"
// @Failure      404      {object}  validation.ErrorResponse   "Author not found"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /author/{id} [put]
func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, ok := parseID(c, "INVALID_AUTHOR_ID", "invalid author id")
	if !ok {
		return
	}

	var req service.AuthorUpdate
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, req); err != nil {
		h.fail(c, err, "AUTHOR_UPDATE_FAILED", "failed to update author")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAuthor godoc
// @Summary      Delete an author
// @Description  Delete an author that has no books
// @Tags         authors
// @Produce      json
// @Param        id   path      int  true  "Author ID"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Author not found"
// @Failure      409  {object}  validation.ErrorResponse   "Author still has books"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /author/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, ok := parseID(c, "INVALID_AUTHOR_ID", "invalid author id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "AUTHOR_DELETE_FAILED", "failed to delete author")
		return
	}

	c.Status(http.StatusNoContent)
}
