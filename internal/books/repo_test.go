package books

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
)

func setupBooksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	books := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  isbn TEXT,
  price NUMERIC NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  cover_image_url TEXT,
  published_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	bookAuthors := `
CREATE TABLE IF NOT EXISTS book_authors (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	bookCategories := `
CREATE TABLE IF NOT EXISTS book_categories (
  book_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  PRIMARY KEY (book_id, category_id)
);`
	require.NoError(t, db.Exec(books).Error)
	require.NoError(t, db.Exec(bookAuthors).Error)
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(bookCategories).Error)
	return db
}

func createBook(t *testing.T, db *gorm.DB, title, slug string, active bool, created time.Time) *models.Book {
	t.Helper()

	book := &models.Book{
		ID:            uuid.New(),
		Title:         title,
		Slug:          slug,
		Price:         decimal.RequireFromString("499.00"),
		StockQuantity: 5,
		IsActive:      active,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()

	category := &models.Category{ID: uuid.New(), Name: name, Slug: slug}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestRepositoryList_excludesInactive(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createBook(t, db, "Visible Book", "visible-book", true, now)
	createBook(t, db, "Hidden Book", "hidden-book", false, now)

	rows, err := repo.List(context.Background(), ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Visible Book", rows[0].Title)
}

func TestRepositoryList_searchAndCategory(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	fantasy := createCategory(t, db, "Fantasy", "fantasy")
	wizard := createBook(t, db, "A Wizard of Earthsea", "a-wizard-of-earthsea", true, now)
	createBook(t, db, "Noli Me Tangere", "noli-me-tangere", true, now.Add(-time.Minute))
	require.NoError(t, db.Exec("INSERT INTO book_categories (book_id, category_id) VALUES (?, ?)", wizard.ID, fantasy.ID).Error)

	bySearch, err := repo.List(context.Background(), ListFilter{Search: "Wizard", Limit: 10})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "a-wizard-of-earthsea", bySearch[0].Slug)

	byCategory, err := repo.List(context.Background(), ListFilter{CategorySlug: "fantasy", Limit: 10})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, wizard.ID, byCategory[0].ID)
}

func TestRepositoryDecrementStock(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	book := createBook(t, db, "Stocked Book", "stocked-book", true, time.Now().UTC())

	ok, err := repo.DecrementStock(context.Background(), book.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only 2 left; refusing a larger decrement leaves the row untouched.
	ok, err = repo.DecrementStock(context.Background(), book.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.StockQuantity)
}

func TestRepositoryFindCategoriesByIDs(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	fantasy := createCategory(t, db, "Fantasy Shelf", "fantasy-shelf")

	rows, err := repo.FindCategoriesByIDs(context.Background(), []uuid.UUID{fantasy.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fantasy.ID, rows[0].ID)

	rows, err = repo.FindCategoriesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryCreateCategory_uniqueName(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	_, err := repo.CreateCategory(context.Background(), &models.Category{
		ID: uuid.New(), Name: "History Shelf", Slug: "history-shelf",
	})
	require.NoError(t, err)

	_, err = repo.CreateCategory(context.Background(), &models.Category{
		ID: uuid.New(), Name: "History Shelf", Slug: "history-shelf-2",
	})
	require.Error(t, err)
}

func TestRepositoryFindActiveByIDs(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	active := createBook(t, db, "Active Pick", "active-pick", true, now)
	inactive := createBook(t, db, "Inactive Pick", "inactive-pick", false, now)

	rows, err := repo.FindActiveByIDs(context.Background(), []uuid.UUID{active.ID, inactive.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)
}
