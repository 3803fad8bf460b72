package service

import (
	"github.com/snnyvrz/bookstore-api/internal/model"
)

// Field rules shared by payload binding tags and the patch schema.
const (
	TitleRules    = "required,max=100"
	AuthorRules   = "required,max=50"
	AuthorIDRules = "gt=0"
	YearRules     = "gte=1500,lte=2100"
	PriceRules    = "gte=0.01,lte=1000"
)

type BookRead struct {
	ID        int64           `json:"id" example:"1"`
	Title     string          `json:"title" example:"Dune"`
	Author    string          `json:"author" example:"Frank Herbert"`
	AuthorID  *int64          `json:"author_id,omitempty" example:"1"`
	Year      int             `json:"year" example:"1965"`
	Price     float64         `json:"price" example:"12.5"`
	Version   int64           `json:"version" example:"1"`
	CreatedAt model.Timestamp `json:"created_at" swaggertype:"string" example:"2025-11-24T10:00:00Z"`
	UpdatedAt model.Timestamp `json:"updated_at" swaggertype:"string" example:"2025-11-24T10:00:00Z"`
}

type BookCreate struct {
	Title    string  `json:"title" binding:"required,max=100" example:"Dune"`
	Author   string  `json:"author" binding:"required,max=50" example:"Frank Herbert"`
	AuthorID *int64  `json:"author_id" binding:"omitempty,gt=0" example:"1"`
	Year     int     `json:"year" binding:"gte=1500,lte=2100" example:"1965"`
	Price    float64 `json:"price" binding:"gte=0.01,lte=1000" example:"12.5"`
}

// BookUpdate replaces every mutable field. An omitted author_id clears the
// link to the author.
type BookUpdate struct {
	Title    string  `json:"title" binding:"required,max=100" example:"Dune"`
	Author   string  `json:"author" binding:"required,max=50" example:"Frank Herbert"`
	AuthorID *int64  `json:"author_id" binding:"omitempty,gt=0" example:"1"`
	Year     int     `json:"year" binding:"gte=1500,lte=2100" example:"1965"`
	Price    float64 `json:"price" binding:"gte=0.01,lte=1000" example:"12.5"`
}

func toBookRead(b model.Book) BookRead {
	var authorID *int64
	if b.AuthorID != nil {
		id := *b.AuthorID
		authorID = &id
	}

	return BookRead{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		AuthorID:  authorID,
		Year:      b.Year,
		Price:     b.Price,
		Version:   b.Version,
		CreatedAt: model.NewTimestamp(b.CreatedAt),
		UpdatedAt: model.NewTimestamp(b.UpdatedAt),
	}
}
