package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"github.com/snnyvrz/bookstore-api/internal/patch"
	"github.com/snnyvrz/bookstore-api/internal/repository"
	"github.com/snnyvrz/bookstore-api/internal/validation"
)

type BookService struct {
	books   repository.BookRepository
	authors repository.AuthorRepository
}

func NewBookService(books repository.BookRepository, authors repository.AuthorRepository) *BookService {
	return &BookService{books: books, authors: authors}
}

func (s *BookService) GetAll(ctx context.Context) ([]BookRead, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	out := make([]BookRead, 0, len(books))
	for _, b := range books {
		out = append(out, toBookRead(b))
	}
	return out, nil
}

func (s *BookService) GetByID(ctx context.Context, id int64) (BookRead, error) {
	book, err := s.load(ctx, id)
	if err != nil {
		return BookRead{}, err
	}
	return toBookRead(*book), nil
}

// Create stores a new book. The id is always assigned by the store.
func (s *BookService) Create(ctx context.Context, in BookCreate) (BookRead, error) {
	if violations := validation.Struct(in); len(violations) > 0 {
		return BookRead{}, invalid(violations...)
	}
	if err := s.checkAuthor(ctx, in.AuthorID); err != nil {
		return BookRead{}, err
	}

	book := model.Book{
		Title:    in.Title,
		Author:   in.Author,
		AuthorID: in.AuthorID,
		Year:     in.Year,
		Price:    in.Price,
	}
	if err := s.books.Create(ctx, &book); err != nil {
		return BookRead{}, writeError("create book", err)
	}

	return toBookRead(book), nil
}

// Update replaces every mutable field of the book with id.
func (s *BookService) Update(ctx context.Context, id int64, in BookUpdate) error {
	book, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if violations := validation.Struct(in); len(violations) > 0 {
		return invalid(violations...)
	}
	if err := s.checkAuthor(ctx, in.AuthorID); err != nil {
		return err
	}

	book.Title = in.Title
	book.Author = in.Author
	book.AuthorID = in.AuthorID
	book.Year = in.Year
	book.Price = in.Price

	if err := s.books.Update(ctx, book); err != nil {
		return writeError("update book", err)
	}
	return nil
}

// ApplyPatch applies ops to the book with id. Operation errors and field
// violations are collected into one *ValidationError; in that case nothing
// is written. A patch that touches no field succeeds without a write.
func (s *BookService) ApplyPatch(ctx context.Context, id int64, ops []patch.Operation) error {
	book, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	res := bookPatchSchema.Apply(NewBookPatch(*book), ops)

	violations := res.Errors
	violations = append(violations, bookPatchSchema.Validate(res.Value)...)

	if res.IsTouched("author_id") && !hasViolation(violations, "author_id") {
		v, err := s.authorViolation(ctx, res.Value.AuthorID)
		if err != nil {
			return err
		}
		if v != nil {
			violations = append(violations, *v)
		}
	}

	if len(violations) > 0 {
		return invalid(violations...)
	}
	if len(res.Touched) == 0 {
		return nil
	}

	res.Value.applyTo(book, res.Touched)

	if err := s.books.Update(ctx, book); err != nil {
		return writeError("patch book", err)
	}
	return nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return writeError("delete book", err)
	}
	return nil
}

func (s *BookService) load(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find book %d: %w", id, err)
	}
	return book, nil
}

func (s *BookService) checkAuthor(ctx context.Context, id *int64) error {
	v, err := s.authorViolation(ctx, id)
	if err != nil {
		return err
	}
	if v != nil {
		return invalid(*v)
	}
	return nil
}

func (s *BookService) authorViolation(ctx context.Context, id *int64) (*validation.FieldError, error) {
	if id == nil {
		return nil, nil
	}

	if _, err := s.authors.FindByID(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			v := missingAuthor()
			return &v, nil
		}
		return nil, fmt.Errorf("find author %d: %w", *id, err)
	}
	return nil, nil
}

func missingAuthor() validation.FieldError {
	return validation.FieldError{
		Field:   "author_id",
		Rule:    "exists",
		Message: "author_id refers to an author that does not exist",
	}
}

func hasViolation(violations []validation.FieldError, field string) bool {
	for _, v := range violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// writeError maps repository write failures onto service errors.
func writeError(action string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrForeignKey):
		return invalid(missingAuthor())
	}
	return fmt.Errorf("%s: %w", action, err)
}
