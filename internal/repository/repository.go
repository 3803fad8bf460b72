package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/bookstore-api/internal/model"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when a row changed between read and write.
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrForeignKey is returned when a book references a missing author or an
	// author still owns books.
	ErrForeignKey = errors.New("foreign key constraint violated")
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	FindByID(ctx context.Context, id int64) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	Update(ctx context.Context, author *model.Author) error
	Delete(ctx context.Context, id int64) error
	CountBooks(ctx context.Context, id int64) (int64, error)
}

const pgForeignKeyViolation = "23503"

func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errors.Join(ErrForeignKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return errors.Join(ErrForeignKey, err)
	}

	return err
}
