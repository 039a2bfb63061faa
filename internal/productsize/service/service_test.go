package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	"github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/productsize/repository"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, *fakeSystemLog) {
	t.Helper()
	db := dbtest.Open(t, &productdomain.Product{}, &domain.ProductSize{})
	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, db.Create(&productdomain.Product{
		ID: 7, Name: "Camisa", Price: decimal.NewFromInt(80), IsActive: true, CreatedAt: fc.Now(), UpdatedAt: fc.Now(),
	}).Error)

	logs := &fakeSystemLog{}
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fc,
		Repo:       repository.Provide(),
		Storefront: config.NewStaticStorefrontConfigHolder(config.DefaultStorefrontConfig()),
		SystemLog:  logs,
	})
	return svc, fc, logs
}

func boolPtr(v bool) *bool { return &v }

func TestCreateThenListContainsExactlyOneEntry(t *testing.T) {
	svc, fc, logs := newTestService(t)
	ctx := context.Background()

	for _, label := range []string{"P", "M", "GG"} {
		_, err := svc.Create(ctx, "7", domain.CreateRequest{Size: label, StockQuantity: 3})
		require.NoError(t, err)
		fc.Advance(time.Second)
	}

	created, err := svc.Create(ctx, "7", domain.CreateRequest{Size: " 42 ", StockQuantity: 12})
	require.NoError(t, err)
	assert.Equal(t, "42", created.Size)

	sizes, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, sizes, 4)

	matches := 0
	for _, s := range sizes {
		if s.Size == "42" {
			matches++
			assert.Equal(t, 12, s.StockQuantity)
			assert.True(t, s.Available())
		}
	}
	assert.Equal(t, 1, matches)
	assert.Equal(t, "P", sizes[0].Size)
	assert.Len(t, logs.records, 4)
}

func TestCreateRejectsDuplicateLabelWithMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "7", domain.CreateRequest{Size: "M", StockQuantity: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "7", domain.CreateRequest{Size: "M", StockQuantity: 4})
	require.ErrorIs(t, err, domain.ErrDuplicateSize)
	assert.Equal(t, `Tamanho "M" já existe para este produto`, err.Error())
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		product string
		req     domain.CreateRequest
		want    error
	}{
		{name: "blank label", product: "7", req: domain.CreateRequest{Size: "  "}, want: domain.ErrInvalidSize},
		{name: "long label", product: "7", req: domain.CreateRequest{Size: "EXTRA-GRANDE"}, want: domain.ErrSizeTooLong},
		{name: "negative stock", product: "7", req: domain.CreateRequest{Size: "P", StockQuantity: -1}, want: domain.ErrInvalidStock},
		{name: "bad product id", product: "abc", req: domain.CreateRequest{Size: "P"}, want: domain.ErrInvalidID},
		{name: "unknown product", product: "99", req: domain.CreateRequest{Size: "P"}, want: domain.ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.product, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateZeroStockClearsActive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "7", domain.CreateRequest{Size: "G", StockQuantity: 5})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "7", domain.UpdateRequest{
		ID:            created.ID,
		OriginalSize:  "G",
		Size:          "G",
		StockQuantity: 0,
		IsActive:      boolPtr(true),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	sizes, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.False(t, sizes[0].IsActive)
	assert.Equal(t, 0, sizes[0].StockQuantity)
}

func TestUpdateInlineKeepsActiveFlag(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "7", domain.CreateRequest{Size: "P", StockQuantity: 2})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "7", domain.UpdateRequest{Size: "P", StockQuantity: 2, IsActive: boolPtr(false)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "7", domain.UpdateRequest{Size: "P", StockQuantity: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.StockQuantity)
	assert.False(t, updated.IsActive)
}

func TestUpdateRenamesByOriginalSize(t *testing.T) {
	svc, _, logs := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "7", domain.CreateRequest{Size: "M", StockQuantity: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "7", domain.CreateRequest{Size: "G", StockQuantity: 1})
	require.NoError(t, err)

	renamed, err := svc.Update(ctx, "7", domain.UpdateRequest{OriginalSize: "M", Size: "38", StockQuantity: 4, IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "38", renamed.Size)
	assert.True(t, renamed.IsActive)
	assert.Equal(t, "M", logs.records[len(logs.records)-1].Metadata["original_size"])

	_, err = svc.Update(ctx, "7", domain.UpdateRequest{OriginalSize: "38", Size: "G", StockQuantity: 4})
	var dup *domain.DuplicateSizeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "G", dup.Label)

	_, err = svc.Update(ctx, "7", domain.UpdateRequest{OriginalSize: "XL", Size: "XL", StockQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBySize(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "7", domain.CreateRequest{Size: "42", StockQuantity: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "7", domain.CreateRequest{Size: "44", StockQuantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "7", "42"))

	sizes, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Equal(t, "44", sizes[0].Size)

	assert.ErrorIs(t, svc.Delete(ctx, "7", "42"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "7", ""), domain.ErrInvalidSize)
}

func TestComputeTotals(t *testing.T) {
	totals := domain.ComputeTotals([]domain.ProductSize{
		{Size: "P", StockQuantity: 3},
		{Size: "M", StockQuantity: 0},
		{Size: "G", StockQuantity: 5},
	})
	assert.Equal(t, domain.Totals{TotalStock: 8, SizesInStock: 2, TotalSizes: 3}, totals)
}
