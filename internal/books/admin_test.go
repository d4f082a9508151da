package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

type stubAdminRepo struct {
	categories map[uuid.UUID]models.Category

	created           *models.Book
	createdCategories []models.Category
	createCategoryErr error
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{categories: map[uuid.UUID]models.Category{}}
}

func (s *stubAdminRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAdminRepo) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	book.ID = uuid.New()
	s.created = book
	return book, nil
}

func (s *stubAdminRepo) Update(ctx context.Context, book *models.Book) error { return nil }

func (s *stubAdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) FindBySlug(ctx context.Context, slug string) (*models.Book, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Book, error) {
	return nil, nil
}

func (s *stubAdminRepo) List(ctx context.Context, filter ListFilter) ([]models.Book, error) {
	return nil, nil
}

func (s *stubAdminRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	return true, nil
}

func (s *stubAdminRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (s *stubAdminRepo) FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	var found []models.Category
	for _, id := range ids {
		if category, ok := s.categories[id]; ok {
			found = append(found, category)
		}
	}
	return found, nil
}

func (s *stubAdminRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.createCategoryErr != nil {
		return nil, s.createCategoryErr
	}
	category.ID = uuid.New()
	s.createdCategories = append(s.createdCategories, *category)
	return category, nil
}

func adminCreateInput(categoryIDs ...uuid.UUID) CreateInput {
	return CreateInput{
		Title:         "The Left Hand of Darkness",
		Slug:          "the-left-hand-of-darkness",
		Price:         decimal.RequireFromString("599.00"),
		StockQuantity: 3,
		Authors:       []string{"Ursula K. Le Guin"},
		CategoryIDs:   categoryIDs,
	}
}

func adminErrCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	return typed.Code()
}

func TestAdminCreate_linksExistingCategories(t *testing.T) {
	repo := newStubAdminRepo()
	fantasyID := uuid.New()
	repo.categories[fantasyID] = models.Category{ID: fantasyID, Name: "Fantasy", Slug: "fantasy"}

	svc, err := NewAdminService(repo)
	require.NoError(t, err)

	detail, err := svc.Create(context.Background(), adminCreateInput(fantasyID))
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.Len(t, repo.created.Categories, 1)
	assert.Equal(t, "Fantasy", repo.created.Categories[0].Name)
	assert.Equal(t, []string{"Fantasy"}, detail.Categories)
}

func TestAdminCreate_unknownCategoryRejected(t *testing.T) {
	repo := newStubAdminRepo()
	svc, err := NewAdminService(repo)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), adminCreateInput(uuid.New()))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, adminErrCode(t, err))
	assert.Nil(t, repo.created)
}

func TestAdminCreate_duplicateCategoryIDsCollapsed(t *testing.T) {
	repo := newStubAdminRepo()
	fantasyID := uuid.New()
	repo.categories[fantasyID] = models.Category{ID: fantasyID, Name: "Fantasy", Slug: "fantasy"}

	svc, err := NewAdminService(repo)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), adminCreateInput(fantasyID, fantasyID))
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Len(t, repo.created.Categories, 1)
}

func TestAdminCreateCategory(t *testing.T) {
	repo := newStubAdminRepo()
	svc, err := NewAdminService(repo)
	require.NoError(t, err)

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Philippine Literature",
		Slug: "philippine-literature",
	})
	require.NoError(t, err)
	assert.Equal(t, "Philippine Literature", category.Name)
	require.Len(t, repo.createdCategories, 1)
}

func TestAdminCreateCategory_missingFieldsRejected(t *testing.T) {
	repo := newStubAdminRepo()
	svc, err := NewAdminService(repo)
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), CreateCategoryInput{Slug: "no-name"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, adminErrCode(t, err))
	assert.Empty(t, repo.createdCategories)
}
