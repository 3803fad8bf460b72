package handler

import "github.com/snnyvrz/bookstore-api/internal/service"

type BookResponse struct {
	Data service.BookRead `json:"data"`
}

type ListBooksResponse struct {
	Data []service.BookRead `json:"data"`
}

// PatchOperation documents one JSON Patch operation for the API docs.
type PatchOperation struct {
	Op    string `json:"op" example:"replace" enums:"add,remove,replace,test"`
	Path  string `json:"path" example:"/title"`
	Value any    `json:"value,omitempty" swaggertype:"string" example:"Animal Farm"`
}
