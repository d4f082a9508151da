package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/pagination"
)

// Service defines catalog operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*BookDetail, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ListInput carries catalog listing filters from the controller.
type ListInput struct {
	CategorySlug string
	Search       string
	Limit        int
	Cursor       string
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.List(ctx, ListFilter{
		CategorySlug: input.CategorySlug,
		Search:       input.Search,
		Limit:        limit,
		Cursor:       cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}

	result := &ListResult{Items: make([]BookSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Items = append(result.Items, summaryFromModel(row))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*BookDetail, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book slug required")
	}

	book, err := s.repo.FindBySlug(ctx, trimmed)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if !book.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}

	detail := detailFromModel(*book)
	return &detail, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

// ResolveForPurchase loads the active books for the given ids and reports any
// that are missing, inactive, or out of stock for the requested quantity.
func ResolveForPurchase(ctx context.Context, repo Repository, wanted map[uuid.UUID]int) (map[uuid.UUID]models.Book, error) {
	ids := make([]uuid.UUID, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}

	rows, err := repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load books")
	}

	byID := make(map[uuid.UUID]models.Book, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	for id, qty := range wanted {
		book, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book no longer available")
		}
		if book.StockQuantity < qty {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %q", book.Title))
		}
	}

	return byID, nil
}
