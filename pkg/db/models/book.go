package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is the sellable catalog entity. Price is stored as a numeric column and
// converted to centavos only at the payment boundary.
type Book struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string          `gorm:"column:title;not null"`
	Slug          string          `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string         `gorm:"column:description"`
	ISBN          *string         `gorm:"column:isbn;uniqueIndex"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	CoverImageURL *string         `gorm:"column:cover_image_url"`
	PublishedAt   *time.Time      `gorm:"column:published_at"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Authors    []BookAuthor `gorm:"foreignKey:BookID"`
	Categories []Category   `gorm:"many2many:book_categories;joinForeignKey:BookID;joinReferences:CategoryID"`
}
