package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"github.com/snnyvrz/bookstore-api/internal/repository"
	"github.com/snnyvrz/bookstore-api/internal/validation"
)

type AuthorService struct {
	authors repository.AuthorRepository
}

func NewAuthorService(authors repository.AuthorRepository) *AuthorService {
	return &AuthorService{authors: authors}
}

func (s *AuthorService) GetAll(ctx context.Context) ([]AuthorRead, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	out := make([]AuthorRead, 0, len(authors))
	for _, a := range authors {
		out = append(out, toAuthorRead(a))
	}
	return out, nil
}

func (s *AuthorService) GetByID(ctx context.Context, id int64) (AuthorRead, error) {
	author, err := s.load(ctx, id)
	if err != nil {
		return AuthorRead{}, err
	}
	return toAuthorRead(*author), nil
}

func (s *AuthorService) Create(ctx context.Context, in AuthorCreate) (AuthorRead, error) {
	if violations := validation.Struct(in); len(violations) > 0 {
		return AuthorRead{}, invalid(violations...)
	}

	author := model.Author{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.authors.Create(ctx, &author); err != nil {
		return AuthorRead{}, fmt.Errorf("create author: %w", err)
	}

	return toAuthorRead(author), nil
}

func (s *AuthorService) Update(ctx context.Context, id int64, in AuthorUpdate) error {
	author, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if violations := validation.Struct(in); len(violations) > 0 {
		return invalid(violations...)
	}

	author.FirstName = in.FirstName
	author.LastName = in.LastName

	if err := s.authors.Update(ctx, author); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}

// Delete removes an author that owns no books. Authors with books are
// rejected with ErrConflict.
func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	n, err := s.authors.CountBooks(ctx, id)
	if err != nil {
		return fmt.Errorf("count books of author %d: %w", id, err)
	}
	if n > 0 {
		return ErrConflict
	}

	if err := s.authors.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return ErrConflict
		}
		return fmt.Errorf("delete author: %w", err)
	}
	return nil
}

func (s *AuthorService) load(ctx context.Context, id int64) (*model.Author, error) {
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find author %d: %w", id, err)
	}
	return author, nil
}
