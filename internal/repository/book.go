package repository

import (
	"context"
	"time"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"gorm.io/gorm"
)

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	book.ID = 0
	book.Version = 1
	return translate(r.db.WithContext(ctx).Create(book).Error)
}

func (r *GormBookRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

func (r *GormBookRepository) List(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, translate(err)
	}
	return books, nil
}

// Update writes every mutable column when the stored version still matches
// book.Version, then advances book.Version.
func (r *GormBookRepository) Update(ctx context.Context, book *model.Book) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ? AND version = ?", book.ID, book.Version).
		Updates(map[string]any{
			"title":      book.Title,
			"author":     book.Author,
			"author_id":  book.AuthorID,
			"year":       book.Year,
			"price":      book.Price,
			"version":    book.Version + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return translate(result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", book.ID).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	book.Version++
	book.UpdatedAt = now
	return nil
}

func (r *GormBookRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Book{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ BookRepository = (*GormBookRepository)(nil)
