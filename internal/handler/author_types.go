package handler

import "github.com/snnyvrz/bookstore-api/internal/service"

type AuthorResponse struct {
	Data service.AuthorRead `json:"data"`
}

type ListAuthorsResponse struct {
	Data []service.AuthorRead `json:"data"`
}
