package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db"
	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

// AdminService covers catalog management. Removal is a soft deactivation so
// order snapshots and carts referencing the book stay intact.
type AdminService interface {
	Create(ctx context.Context, input CreateInput) (*BookDetail, error)
	Update(ctx context.Context, bookID uuid.UUID, input UpdateInput) (*BookDetail, error)
	Deactivate(ctx context.Context, bookID uuid.UUID) error
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
}

// CreateInput describes a new catalog entry.
type CreateInput struct {
	Title         string
	Slug          string
	Description   *string
	ISBN          *string
	Price         decimal.Decimal
	StockQuantity int
	CoverImageURL *string
	PublishedAt   *time.Time
	Authors       []string
	CategoryIDs   []uuid.UUID
}

// CreateCategoryInput adds a browsable grouping books can be linked to.
type CreateCategoryInput struct {
	Name string
	Slug string
}

// UpdateInput applies partial edits; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CoverImageURL *string
	PublishedAt   *time.Time
	IsActive      *bool
}

type adminService struct {
	repo Repository
}

// NewAdminService builds the catalog management service.
func NewAdminService(repo Repository) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	return &adminService{repo: repo}, nil
}

func (s *adminService) Create(ctx context.Context, input CreateInput) (*BookDetail, error) {
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	book := &models.Book{
		Title:         input.Title,
		Slug:          input.Slug,
		Description:   input.Description,
		ISBN:          input.ISBN,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CoverImageURL: input.CoverImageURL,
		PublishedAt:   input.PublishedAt,
		IsActive:      true,
	}
	for i, name := range input.Authors {
		book.Authors = append(book.Authors, models.BookAuthor{Name: name, SortOrder: i})
	}

	// Links only reference categories that exist; an unknown id is a client
	// error, not a blank category row.
	if len(input.CategoryIDs) > 0 {
		categories, err := s.resolveCategories(ctx, input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		book.Categories = categories
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug or isbn already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
	}

	detail := detailFromModel(*created)
	return &detail, nil
}

func (s *adminService) Update(ctx context.Context, bookID uuid.UUID, input UpdateInput) (*BookDetail, error) {
	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch book")
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Description != nil {
		book.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		book.Price = *input.Price
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
		}
		book.StockQuantity = *input.StockQuantity
	}
	if input.CoverImageURL != nil {
		book.CoverImageURL = input.CoverImageURL
	}
	if input.PublishedAt != nil {
		book.PublishedAt = input.PublishedAt
	}
	if input.IsActive != nil {
		book.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
	}

	detail := detailFromModel(*book)
	return &detail, nil
}

func (s *adminService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	if input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug required")
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{
		Name: input.Name,
		Slug: input.Slug,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category name or slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

// resolveCategories loads the rows for the requested ids and fails when any
// id is unknown.
func (s *adminService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	categories, err := s.repo.FindCategoriesByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	if len(categories) != len(unique) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return categories, nil
}

func (s *adminService) Deactivate(ctx context.Context, bookID uuid.UUID) error {
	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch book")
	}
	if !book.IsActive {
		return nil
	}

	book.IsActive = false
	if err := s.repo.Update(ctx, book); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate book")
	}
	return nil
}
