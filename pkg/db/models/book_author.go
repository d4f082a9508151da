package models

import (
	"time"

	"github.com/google/uuid"
)

// BookAuthor records a credited author on a book.
type BookAuthor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
