package service

import "github.com/snnyvrz/bookstore-api/internal/model"

type AuthorRead struct {
	ID        int64           `json:"id" example:"1"`
	FirstName string          `json:"first_name" example:"Frank"`
	LastName  string          `json:"last_name" example:"Herbert"`
	Books     []AuthorBook    `json:"books"`
	CreatedAt model.Timestamp `json:"created_at" swaggertype:"string" example:"2025-11-24T10:00:00Z"`
	UpdatedAt model.Timestamp `json:"updated_at" swaggertype:"string" example:"2025-11-24T10:00:00Z"`
}

type AuthorBook struct {
	ID    int64  `json:"id" example:"1"`
	Title string `json:"title" example:"Dune"`
	Year  int    `json:"year" example:"1965"`
}

type AuthorCreate struct {
	FirstName string `json:"first_name" binding:"required,max=100" example:"Frank"`
	LastName  string `json:"last_name" binding:"required,max=100" example:"Herbert"`
}

type AuthorUpdate struct {
	FirstName string `json:"first_name" binding:"required,max=100" example:"Frank"`
	LastName  string `json:"last_name" binding:"required,max=100" example:"Herbert"`
}

func toAuthorRead(a model.Author) AuthorRead {
	books := make([]AuthorBook, 0, len(a.Books))
	for _, b := range a.Books {
		books = append(books, AuthorBook{ID: b.ID, Title: b.Title, Year: b.Year})
	}

	return AuthorRead{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Books:     books,
		CreatedAt: model.NewTimestamp(a.CreatedAt),
		UpdatedAt: model.NewTimestamp(a.UpdatedAt),
	}
}
