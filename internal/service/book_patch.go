package service

import (
	"github.com/snnyvrz/bookstore-api/internal/model"
	"github.com/snnyvrz/bookstore-api/internal/patch"
)

// BookPatch is the patchable view of a Book. A nil member is absent.
type BookPatch struct {
	Title    *string
	Author   *string
	AuthorID *int64
	Year     *int
	Price    *float64
}

var bookPatchSchema = patch.NewSchema(
	patch.Value("title", TitleRules, func(p *BookPatch) **string { return &p.Title }),
	patch.Value("author", AuthorRules, func(p *BookPatch) **string { return &p.Author }),
	patch.Nullable("author_id", AuthorIDRules, func(p *BookPatch) **int64 { return &p.AuthorID }),
	patch.Value("year", YearRules, func(p *BookPatch) **int { return &p.Year }),
	patch.Value("price", PriceRules, func(p *BookPatch) **float64 { return &p.Price }),
)

// BookPatchFields lists the paths a book patch may target.
func BookPatchFields() []string {
	return bookPatchSchema.Fields()
}

func NewBookPatch(b model.Book) BookPatch {
	title, author, year, price := b.Title, b.Author, b.Year, b.Price

	p := BookPatch{
		Title:  &title,
		Author: &author,
		Year:   &year,
		Price:  &price,
	}
	if b.AuthorID != nil {
		id := *b.AuthorID
		p.AuthorID = &id
	}
	return p
}

// applyTo copies the touched members onto b.
func (p BookPatch) applyTo(b *model.Book, touched []string) {
	for _, name := range touched {
		switch name {
		case "title":
			b.Title = *p.Title
		case "author":
			b.Author = *p.Author
		case "author_id":
			if p.AuthorID == nil {
				b.AuthorID = nil
			} else {
				id := *p.AuthorID
				b.AuthorID = &id
			}
		case "year":
			b.Year = *p.Year
		case "price":
			b.Price = *p.Price
		}
	}
}
