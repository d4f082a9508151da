package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
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
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, book_id)
);`
	require.NoError(t, db.Exec(books).Error)
	require.NoError(t, db.Exec(bookAuthors).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func createCartBook(t *testing.T, db *gorm.DB, title, slug string) *models.Book {
	t.Helper()

	book := &models.Book{
		ID:            uuid.New(),
		Title:         title,
		Slug:          slug,
		Price:         decimal.RequireFromString("350.00"),
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestRepositoryUpsert_mergesQuantities(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	book := createCartBook(t, db, "The Tombs of Atuan", "the-tombs-of-atuan")

	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{
		ID:       uuid.New(),
		UserID:   userID,
		BookID:   book.ID,
		Quantity: 2,
	}))
	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{
		ID:       uuid.New(),
		UserID:   userID,
		BookID:   book.ID,
		Quantity: 3,
	}))

	item, err := repo.FindByUserAndBook(context.Background(), userID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryFindByUser_preloadsBook(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	book := createCartBook(t, db, "Tehanu", "tehanu")

	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{
		ID:       uuid.New(),
		UserID:   userID,
		BookID:   book.ID,
		Quantity: 1,
	}))

	items, err := repo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Book)
	assert.Equal(t, "Tehanu", items[0].Book.Title)
}

func TestRepositoryDeleteByUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	otherUser := uuid.New()
	bookA := createCartBook(t, db, "The Other Wind", "the-other-wind")
	bookB := createCartBook(t, db, "Tales from Earthsea", "tales-from-earthsea")

	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{ID: uuid.New(), UserID: userID, BookID: bookA.ID, Quantity: 1}))
	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{ID: uuid.New(), UserID: userID, BookID: bookB.ID, Quantity: 1}))
	require.NoError(t, repo.Upsert(context.Background(), &models.CartItem{ID: uuid.New(), UserID: otherUser, BookID: bookA.ID, Quantity: 2}))

	require.NoError(t, repo.DeleteByUser(context.Background(), userID))

	mine, err := repo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := repo.FindByUser(context.Background(), otherUser)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
