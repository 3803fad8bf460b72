package repository

import (
	"context"

	"github.com/snnyvrz/bookstore-api/internal/model"
	"gorm.io/gorm"
)

type GormAuthorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) Create(ctx context.Context, author *model.Author) error {
	author.ID = 0
	author.Books = nil
	return translate(r.db.WithContext(ctx).Create(author).Error)
}

func (r *GormAuthorRepository) FindByID(ctx context.Context, id int64) (*model.Author, error) {
	var author model.Author
	if err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&author, "id = ?", id).Error; err != nil {

		return nil, translate(err)
	}
	return &author, nil
}

func (r *GormAuthorRepository) List(ctx context.Context) ([]model.Author, error) {
	authors := []model.Author{}
	if err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&authors).Error; err != nil {

		return nil, translate(err)
	}
	return authors, nil
}

func (r *GormAuthorRepository) Update(ctx context.Context, author *model.Author) error {
	result := r.db.WithContext(ctx).
		Model(&model.Author{}).
		Where("id = ?", author.ID).
		Updates(map[string]any{
			"first_name": author.FirstName,
			"last_name":  author.LastName,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAuthorRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Author{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAuthorRepository) CountBooks(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Book{}).Where("author_id = ?", id).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

var _ AuthorRepository = (*GormAuthorRepository)(nil)
