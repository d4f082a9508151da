package books

import (
	"context"
	"strings"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes catalog persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	FindBySlug(ctx context.Context, slug string) (*models.Book, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Book, error)
	List(ctx context.Context, filter ListFilter) ([]models.Book, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	CategorySlug string
	Search       string
	Limit        int
	Cursor       *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a books repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		Where("slug = ?", slug).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var books []models.Book
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Book, error) {
	query := r.db.WithContext(ctx).
		Preload("Authors").
		Where("is_active = ?", true)

	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.
			Joins("JOIN book_categories bc ON bc.book_id = books.id").
			Joins("JOIN categories c ON c.id = bc.category_id").
			Where("c.slug = ?", slug)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(books.created_at < ?) OR (books.created_at = ? AND books.id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var books []models.Book
	err := query.
		Order("books.created_at DESC, books.id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// DecrementStock atomically reduces stock, refusing to go negative. The bool
// result reports whether a row was updated.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE books
		SET stock_quantity = stock_quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_quantity >= ?
	`, qty, id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}
