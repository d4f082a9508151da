package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
)

// BookSummary is the catalog listing projection.
type BookSummary struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL *string         `json:"cover_image_url,omitempty"`
	Authors       []string        `json:"authors"`
	InStock       bool            `json:"in_stock"`
}

// BookDetail extends the summary with full catalog fields.
type BookDetail struct {
	BookSummary
	Description   *string    `json:"description,omitempty"`
	ISBN          *string    `json:"isbn,omitempty"`
	StockQuantity int        `json:"stock_quantity"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Categories    []string   `json:"categories"`
}

// ListResult carries one catalog page plus the cursor for the next one.
type ListResult struct {
	Items      []BookSummary `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func summaryFromModel(book models.Book) BookSummary {
	authors := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		authors = append(authors, a.Name)
	}
	return BookSummary{
		ID:            book.ID,
		Title:         book.Title,
		Slug:          book.Slug,
		Price:         book.Price,
		CoverImageURL: book.CoverImageURL,
		Authors:       authors,
		InStock:       book.StockQuantity > 0,
	}
}

func detailFromModel(book models.Book) BookDetail {
	categories := make([]string, 0, len(book.Categories))
	for _, c := range book.Categories {
		categories = append(categories, c.Name)
	}
	return BookDetail{
		BookSummary:   summaryFromModel(book),
		Description:   book.Description,
		ISBN:          book.ISBN,
		StockQuantity: book.StockQuantity,
		PublishedAt:   book.PublishedAt,
		Categories:    categories,
	}
}
