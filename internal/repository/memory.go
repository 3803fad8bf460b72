package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/snnyvrz/bookstore-api/internal/model"
)

// MemoryStore keeps books and authors in process memory. Ids come from
// per-table counters and are never reused. Records are copied on the way in
// and out, so callers never share state with the store.
type MemoryStore struct {
	mu sync.RWMutex

	books     map[int64]model.Book
	authors   map[int64]model.Author
	bookSeq   int64
	authorSeq int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:   make(map[int64]model.Book),
		authors: make(map[int64]model.Author),
		now:     time.Now,
	}
}

func (s *MemoryStore) Books() BookRepository { return memoryBooks{s} }

func (s *MemoryStore) Authors() AuthorRepository { return memoryAuthors{s} }

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

type memoryBooks struct{ s *MemoryStore }

func (m memoryBooks) Create(ctx context.Context, book *model.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.AuthorID != nil {
		if _, ok := s.authors[*book.AuthorID]; !ok {
			return ErrForeignKey
		}
	}

	s.bookSeq++
	now := s.now()

	book.ID = s.bookSeq
	book.Version = 1
	book.CreatedAt = now
	book.UpdatedAt = now

	s.books[book.ID] = copyBook(*book)
	return nil
}

func (m memoryBooks) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyBook(b)
	return &out, nil
}

func (m memoryBooks) List(ctx context.Context) ([]model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedBooks(func(model.Book) bool { return true }), nil
}

func (m memoryBooks) Update(ctx context.Context, book *model.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[book.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != book.Version {
		return ErrVersionConflict
	}
	if book.AuthorID != nil {
		if _, ok := s.authors[*book.AuthorID]; !ok {
			return ErrForeignKey
		}
	}

	stored.Title = book.Title
	stored.Author = book.Author
	stored.AuthorID = copyID(book.AuthorID)
	stored.Year = book.Year
	stored.Price = book.Price
	stored.Version++
	stored.UpdatedAt = s.now()

	s.books[book.ID] = stored

	book.Version = stored.Version
	book.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m memoryBooks) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return ErrNotFound
	}
	delete(s.books, id)
	return nil
}

type memoryAuthors struct{ s *MemoryStore }

func (m memoryAuthors) Create(ctx context.Context, author *model.Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authorSeq++
	now := s.now()

	author.ID = s.authorSeq
	author.Books = nil
	author.CreatedAt = now
	author.UpdatedAt = now

	s.authors[author.ID] = *author
	return nil
}

func (m memoryAuthors) FindByID(ctx context.Context, id int64) (*model.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.authors[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s.withBooks(a)
	return &out, nil
}

func (m memoryAuthors) List(ctx context.Context) ([]model.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.authors))
	for id := range s.authors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	authors := make([]model.Author, 0, len(ids))
	for _, id := range ids {
		authors = append(authors, s.withBooks(s.authors[id]))
	}
	return authors, nil
}

func (m memoryAuthors) Update(ctx context.Context, author *model.Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.authors[author.ID]
	if !ok {
		return ErrNotFound
	}

	stored.FirstName = author.FirstName
	stored.LastName = author.LastName
	stored.UpdatedAt = s.now()
	s.authors[author.ID] = stored

	author.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m memoryAuthors) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[id]; !ok {
		return ErrNotFound
	}
	for _, b := range s.books {
		if b.AuthorID != nil && *b.AuthorID == id {
			return ErrForeignKey
		}
	}
	delete(s.authors, id)
	return nil
}

func (m memoryAuthors) CountBooks(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, b := range s.books {
		if b.AuthorID != nil && *b.AuthorID == id {
			n++
		}
	}
	return n, nil
}

// callers must hold s.mu.
func (s *MemoryStore) withBooks(a model.Author) model.Author {
	a.Books = s.sortedBooks(func(b model.Book) bool {
		return b.AuthorID != nil && *b.AuthorID == a.ID
	})
	return a
}

// callers must hold s.mu.
func (s *MemoryStore) sortedBooks(keep func(model.Book) bool) []model.Book {
	books := make([]model.Book, 0, len(s.books))
	for _, b := range s.books {
		if keep(b) {
			books = append(books, copyBook(b))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

func copyBook(b model.Book) model.Book {
	b.AuthorID = copyID(b.AuthorID)
	return b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
