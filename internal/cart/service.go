package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/internal/books"
	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

const maxQuantityPerBook = 10

// Service defines cart operations.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) error
	UpdateQuantity(ctx context.Context, input UpdateQuantityInput) error
	RemoveItem(ctx context.Context, userID, bookID uuid.UUID) error
	View(ctx context.Context, userID uuid.UUID) (*View, error)
}

// AddItemInput adds a book to the user's cart.
type AddItemInput struct {
	UserID   uuid.UUID
	BookID   uuid.UUID
	Quantity int
}

// UpdateQuantityInput replaces the cart quantity for a book.
type UpdateQuantityInput struct {
	UserID   uuid.UUID
	BookID   uuid.UUID
	Quantity int
}

// Line is one row of the cart view with the current catalog price applied.
type Line struct {
	BookID   uuid.UUID       `json:"book_id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
	InStock  bool            `json:"in_stock"`
}

// View is the priced cart snapshot returned to the storefront.
type View struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type service struct {
	repo      Repository
	booksRepo books.Repository
}

// NewService builds the cart service.
func NewService(repo Repository, booksRepo books.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if booksRepo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	return &service{repo: repo, booksRepo: booksRepo}, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.Quantity <= 0 || input.Quantity > maxQuantityPerBook {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxQuantityPerBook))
	}

	book, err := s.booksRepo.FindByID(ctx, input.BookID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if !book.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}

	// The upsert merges quantities, so the cap and the stock check apply to
	// the line total, not just the increment.
	current := 0
	existing, err := s.repo.FindByUserAndBook(ctx, input.UserID, input.BookID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if existing != nil {
		current = existing.Quantity
	}
	if current+input.Quantity > maxQuantityPerBook {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart holds at most %d copies per book", maxQuantityPerBook))
	}
	if book.StockQuantity < current+input.Quantity {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
	}

	item := &models.CartItem{
		UserID:   input.UserID,
		BookID:   input.BookID,
		Quantity: input.Quantity,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return nil
}

func (s *service) UpdateQuantity(ctx context.Context, input UpdateQuantityInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.Quantity < 0 || input.Quantity > maxQuantityPerBook {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 0 and %d", maxQuantityPerBook))
	}

	item, err := s.repo.FindByUserAndBook(ctx, input.UserID, input.BookID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if input.Quantity == 0 {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return nil
	}

	if err := s.repo.UpdateQuantity(ctx, item.ID, input.Quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart quantity")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, bookID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	item, err := s.repo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	view := &View{Lines: make([]Line, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		if item.Book == nil || !item.Book.IsActive {
			continue
		}
		subtotal := item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, Line{
			BookID:   item.BookID,
			Title:    item.Book.Title,
			Slug:     item.Book.Slug,
			Price:    item.Book.Price,
			Quantity: item.Quantity,
			Subtotal: subtotal,
			InStock:  item.Book.StockQuantity >= item.Quantity,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}
