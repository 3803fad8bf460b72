package service

import (
	"context"
	"sync/atomic"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"github.com/snnyvrz/bookstore-api/internal/repository"
)

// countingBooks wraps a BookRepository and counts write calls.
type countingBooks struct {
	repository.BookRepository
	writes atomic.Int64
}

func (c *countingBooks) Create(ctx context.Context, b *model.Book) error {
	c.writes.Add(1)
	return c.BookRepository.Create(ctx, b)
}

func (c *countingBooks) Update(ctx context.Context, b *model.Book) error {
	c.writes.Add(1)
	return c.BookRepository.Update(ctx, b)
}

func (c *countingBooks) Delete(ctx context.Context, id int64) error {
	c.writes.Add(1)
	return c.BookRepository.Delete(ctx, id)
}

type fakeBookRepo struct {
	CreateFn   func(ctx context.Context, b *model.Book) error
	FindByIDFn func(ctx context.Context, id int64) (*model.Book, error)
	ListFn     func(ctx context.Context) ([]model.Book, error)
	UpdateFn   func(ctx context.Context, b *model.Book) error
	DeleteFn   func(ctx context.Context, id int64) error
}

func (f *fakeBookRepo) Create(ctx context.Context, b *model.Book) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, b)
	}
	return nil
}

func (f *fakeBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookRepo) List(ctx context.Context) ([]model.Book, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []model.Book{}, nil
}

func (f *fakeBookRepo) Update(ctx context.Context, b *model.Book) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, b)
	}
	return nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

type fixture struct {
	store   *repository.MemoryStore
	books   *countingBooks
	service *BookService
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	books := &countingBooks{BookRepository: store.Books()}
	return &fixture{
		store:   store,
		books:   books,
		service: NewBookService(books, store.Authors()),
	}
}

// seed stores b directly, bypassing the write counter.
func (f *fixture) seed(b model.Book) model.Book {
	if err := f.store.Books().Create(context.Background(), &b); err != nil {
		panic(err)
	}
	return b
}

func (f *fixture) seedAuthor(first, last string) model.Author {
	a := model.Author{FirstName: first, LastName: last}
	if err := f.store.Authors().Create(context.Background(), &a); err != nil {
		panic(err)
	}
	return a
}

func orwell() model.Book {
	return model.Book{Title: "1984", Author: "Orwell", Year: 1949, Price: 15.99}
}
