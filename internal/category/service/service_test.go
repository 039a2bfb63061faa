package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/category/repository"
	"github.com/smallbiznis/pistache/internal/clock"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	"github.com/smallbiznis/pistache/internal/ratelimit"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSystemLog struct {
	records []systemlogdomain.RecordRequest
}

func (f *fakeSystemLog) Record(_ context.Context, req systemlogdomain.RecordRequest) error {
	f.records = append(f.records, req)
	return nil
}

func (f *fakeSystemLog) List(context.Context, systemlogdomain.ListRequest) (systemlogdomain.ListResponse, error) {
	return systemlogdomain.ListResponse{}, nil
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	logs  *fakeSystemLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &productdomain.Product{}, &domain.Category{}, &domain.ProductCategory{})
	fc := clock.NewFakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	logs := &fakeSystemLog{}

	require.NoError(t, db.Create(&productdomain.Product{
		ID: 1, Name: "Vestido", Price: decimal.NewFromInt(100), IsActive: true, CreatedAt: fc.Now(), UpdatedAt: fc.Now(),
	}).Error)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     fc,
		Repo:      repository.Provide(),
		Guard:     ratelimit.NewLocalGuard(time.Second),
		SystemLog: logs,
	})
	return &fixture{svc: svc, db: db, clock: fc, logs: logs}
}

func (f *fixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: name})
	require.NoError(t, err)
	return c
}

func ids(items []domain.Category) []int64 {
	out := make([]int64, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

func TestCreateGeneratesSlugAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)

	c := f.category(t, "Vestidos de Festa")
	assert.Equal(t, "vestidos-de-festa", c.Slug)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: "Vestidos  de festa"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	_, err = f.svc.Create(context.Background(), domain.CreateRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAssociateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.category(t, "Blusas")

	_, err := f.svc.Associate(ctx, "1", c.ID)
	require.NoError(t, err)
	_, err = f.svc.Associate(ctx, "1", c.ID)
	require.NoError(t, err)

	associated, err := f.svc.ListForProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID}, ids(associated))

	require.NoError(t, f.svc.Dissociate(ctx, "1", c.ID))
	require.NoError(t, f.svc.Dissociate(ctx, "1", c.ID))

	associated, err = f.svc.ListForProduct(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, associated)
}

func TestAssociateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Associate(ctx, "99", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.svc.Associate(ctx, "1", 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Associate(ctx, "x", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListAvailableAnnotatesAssociation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blusas := f.category(t, "Blusas")
	saias := f.category(t, "Saias")
	_, err := f.svc.Associate(ctx, "1", saias.ID)
	require.NoError(t, err)

	all, err := f.svc.ListAvailable(ctx, "1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.AvailableCategory{ID: blusas.ID, Name: "Blusas", Slug: "blusas"}, all[0])
	assert.True(t, all[1].IsAssociated)

	filtered, err := f.svc.ListAvailable(ctx, "1", "SAI")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, saias.ID, filtered[0].ID)
}

func TestReplaceAppliesDiffTransactionally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.category(t, "Um")
	c2 := f.category(t, "Dois")
	c3 := f.category(t, "Tres")

	_, err := f.svc.Replace(ctx, "1", []int64{c2.ID, c3.ID})
	require.NoError(t, err)

	res, err := f.svc.Replace(ctx, "1", []int64{c1.ID, c2.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID}, res.Added)
	assert.Equal(t, []int64{c3.ID}, res.Removed)
	assert.ElementsMatch(t, []int64{c1.ID, c2.ID}, ids(res.Categories))

	res, err = f.svc.Replace(ctx, "1", []int64{c1.ID, c2.ID})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
}

func TestReplaceRollsBackOnUnknownCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.category(t, "Um")
	_, err := f.svc.Replace(ctx, "1", []int64{c1.ID})
	require.NoError(t, err)

	_, err = f.svc.Replace(ctx, "1", []int64{999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	associated, err := f.svc.ListForProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID}, ids(associated))

	_, err = f.svc.Replace(ctx, "1", []int64{0})
	assert.ErrorIs(t, err, domain.ErrInvalidCategoryID)
}
