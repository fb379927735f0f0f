package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func newProduct(partID string) *domain.Product {
	return &domain.Product{
		PartID:  partID,
		Type:    "Engine",
		Year:    2015,
		Make:    "Ford",
		Model:   "F-150",
		Details: "5.0L V8 Engine",
		Price:   3500,
	}
}

func TestProductRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newProduct(" ENG-001 ")
	p.Description = common.StringPtr("Low mileage")
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ENG-001", got.PartID)
	assert.Equal(t, domain.StatusInStock, got.Status)
	assert.Equal(t, domain.DefaultCustomer, common.StringValue(got.Customer))
	assert.Equal(t, domain.DefaultProtection, common.StringValue(got.Protection))
	assert.Equal(t, domain.DefaultLocation, common.StringValue(got.Location))
	assert.Equal(t, "Low mileage", common.StringValue(got.Description))
	assert.Nil(t, got.ImageURL)

	byPart, err := repo.GetByPartID(ctx, "ENG-001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byPart.ID)
}

func TestProductRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	for _, id := range []string{"A-1", "B-2", "C-3"} {
		require.NoError(t, repo.Create(ctx, newProduct(id)))
		time.Sleep(2 * time.Millisecond)
	}
	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A-1", rows[0].PartID)
	assert.Equal(t, "C-3", rows[2].PartID)
}

func TestProductRepositoryCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newProduct("ENG-002")
	p.Status = "Sold"
	err := repo.Create(ctx, p)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p = newProduct("")
	assert.ErrorIs(t, repo.Create(ctx, p), domain.ErrValidation)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestProductRepositoryPartIDConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	first := newProduct("ENG-001")
	require.NoError(t, repo.Create(ctx, first))

	dup := newProduct("ENG-001")
	dup.Price = 1
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrConflict)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3500, rows[0].Price)
}

func TestProductRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newProduct("ENG-001")
	require.NoError(t, repo.Create(ctx, p))
	other := newProduct("ENG-002")
	require.NoError(t, repo.Create(ctx, other))

	price := 500
	updated, err := repo.Update(ctx, p.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.Price)
	assert.Equal(t, p.PartID, updated.PartID)
	assert.Equal(t, p.Details, updated.Details)
	assert.Equal(t, p.Status, updated.Status)

	t.Run("part id taken", func(t *testing.T) {
		taken := "ENG-002"
		_, err := repo.Update(ctx, p.ID, domain.ProductPatch{PartID: &taken})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := "Lost"
		_, err := repo.Update(ctx, p.ID, domain.ProductPatch{Status: &status})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.Update(ctx, "missing", domain.ProductPatch{Price: &price})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProductRepositoryDeleteCascadesReviews(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	reviews := NewGormReviewRepository(db)

	p := newProduct("ENG-001")
	require.NoError(t, products.Create(ctx, p))
	require.NoError(t, reviews.Create(ctx, &domain.Review{ProductID: p.ID, Name: "Sam", Rating: 5, Review: "Great"}))

	ok, err := products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows, err := reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ok, err = products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductRepositoryImageURLs(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	with := newProduct("ENG-001")
	with.ImageURL = common.StringPtr("/uploads/a.png")
	require.NoError(t, repo.Create(ctx, with))
	require.NoError(t, repo.Create(ctx, newProduct("ENG-002")))

	urls, err := repo.ImageURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, urls)
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormReviewRepository(setupTestDB(t))

	t.Run("rating out of range", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Review{ProductID: "p1", Name: "Sam", Rating: 6, Review: "Too good"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		err = repo.Create(ctx, &domain.Review{ProductID: "p1", Name: "Sam", Rating: 0, Review: "Bad"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty summary", func(t *testing.T) {
		s, err := repo.Summary(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 0, s.Count)
		assert.Zero(t, s.Average)
	})

	for i, rating := range []int{5, 4, 2} {
		r := &domain.Review{ProductID: "p1", Name: "Buyer", Rating: rating, Review: "ok"}
		if i == 0 {
			r.VideoURL = common.StringPtr("/uploads/v.mp4")
		}
		require.NoError(t, repo.Create(ctx, r))
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, repo.Create(ctx, &domain.Review{ProductID: "p2", Name: "Other", Rating: 1, Review: "no",
		ImageURL: common.StringPtr("/uploads/i.png")}))

	rows, err := repo.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 5, rows[0].Rating)
	assert.Equal(t, 2, rows[2].Rating)

	s, err := repo.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.67, s.Average, 0.001)
	assert.Equal(t, 4.0, s.Median)

	urls, err := repo.MediaURLs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/uploads/v.mp4", "/uploads/i.png"}, urls)
}

func TestCategoryImagePublishBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCategoryImageRepository(setupTestDB(t))

	_, err := repo.Get(ctx, "engine")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first, err := repo.Publish(ctx, "engine", "/images/engine-aaa.png", "aaa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	second, err := repo.Publish(ctx, "engine", "/images/engine-bbb.png", "bbb")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, "/images/engine-bbb.png", second.Path)

	got, err := repo.Get(ctx, "engine")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "bbb", got.Checksum)

	_, err = repo.Publish(ctx, "axle", "/images/axle-ccc.png", "ccc")
	require.NoError(t, err)
	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "axle", rows[0].Category)
}

func TestOperatorRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOperatorRepository(setupTestDB(t))

	_, err := repo.GetByUsername(ctx, "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	op := &domain.AdminOperator{Username: "admin", Password: "hash", Level: "super", Status: common.ENABLED}
	require.NoError(t, repo.Create(ctx, op))
	assert.NotZero(t, op.ID)

	at := time.Now().Truncate(time.Second)
	require.NoError(t, repo.TouchLogin(ctx, op.ID, at))
	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, got.LastLogin.Equal(at))
}

func TestAdminLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAdminLogRepository(setupTestDB(t))

	old := time.Now().AddDate(-2, 0, 0)
	require.NoError(t, repo.Create(ctx, &domain.AdminLog{Operator: "admin", Action: "product.create", OptTime: old}))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.AdminLog{Operator: "admin", Action: "product.update"}))
	}

	rows, total, err := repo.List(ctx, AdminLogFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, AdminLogFilter{Action: "product.create"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)

	n, err := repo.DeleteOlderThan(ctx, time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, total, err = repo.List(ctx, AdminLogFilter{Since: time.Now().Add(-time.Hour)}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
