package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookhavenph/bookhaven-backend/api/responses"
	"github.com/bookhavenph/bookhaven-backend/api/validators"
	"github.com/bookhavenph/bookhaven-backend/internal/books"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

type adminBookCreateRequest struct {
	Title         string      `json:"title" validate:"required,max=255"`
	Slug          string      `json:"slug" validate:"required,max=255"`
	Description   *string     `json:"description,omitempty"`
	ISBN          *string     `json:"isbn,omitempty" validate:"omitempty,max=17"`
	Price         string      `json:"price" validate:"required"`
	StockQuantity int         `json:"stock_quantity" validate:"min=0"`
	CoverImageURL *string     `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
	Authors       []string    `json:"authors,omitempty" validate:"omitempty,dive,required"`
	CategoryIDs   []uuid.UUID `json:"category_ids,omitempty"`
}

type adminBookUpdateRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Description   *string    `json:"description,omitempty"`
	Price         *string    `json:"price,omitempty"`
	StockQuantity *int       `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	CoverImageURL *string    `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// AdminBookCreate adds a book to the catalog.
func AdminBookCreate(svc books.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		var payload adminBookCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		detail, err := svc.Create(r.Context(), books.CreateInput{
			Title:         payload.Title,
			Slug:          payload.Slug,
			Description:   payload.Description,
			ISBN:          payload.ISBN,
			Price:         price,
			StockQuantity: payload.StockQuantity,
			CoverImageURL: payload.CoverImageURL,
			PublishedAt:   payload.PublishedAt,
			Authors:       payload.Authors,
			CategoryIDs:   payload.CategoryIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// AdminBookUpdate applies partial edits to a catalog entry.
func AdminBookUpdate(svc books.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		bookID, err := uuidURLParam(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminBookUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := books.UpdateInput{
			Title:         payload.Title,
			Description:   payload.Description,
			StockQuantity: payload.StockQuantity,
			CoverImageURL: payload.CoverImageURL,
			PublishedAt:   payload.PublishedAt,
			IsActive:      payload.IsActive,
		}
		if payload.Price != nil {
			price, err := decimal.NewFromString(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
				return
			}
			input.Price = &price
		}

		detail, err := svc.Update(r.Context(), bookID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

type adminCategoryCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"required,max=255"`
}

// AdminCategoryCreate adds a category books can be linked to at creation.
func AdminCategoryCreate(svc books.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		var payload adminCategoryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), books.CreateCategoryInput{
			Name: payload.Name,
			Slug: payload.Slug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminBookDelete deactivates a book; order history keeps its snapshots.
func AdminBookDelete(svc books.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		bookID, err := uuidURLParam(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), bookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
