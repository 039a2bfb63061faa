package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/server/servertest"
	"github.com/smallbiznis/pistache/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizesRoundTripAgainstServer(t *testing.T) {
	env := servertest.New(t)
	product := env.SeedProduct(t, "Camisa", "79.90")
	c, err := client.New(env.Server.URL + "/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.CreateSize(ctx, product.ID, domain.CreateRequest{Size: "M", StockQuantity: 2}))
	err = c.CreateSize(ctx, product.ID, domain.CreateRequest{Size: "M", StockQuantity: 1})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, `Tamanho "M" já existe para este produto`, apiErr.Message)

	sizes, err := c.ListSizes(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Equal(t, 2, sizes[0].StockQuantity)

	require.NoError(t, c.DeleteSize(ctx, product.ID, "M"))
	assert.True(t, client.IsNotFound(c.DeleteSize(ctx, product.ID, "M")))
}

func TestMediaUploadAndDelete(t *testing.T) {
	env := servertest.New(t)
	c, err := client.New(env.Server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	noSuffix := false
	res, err := c.UploadMedia(ctx, client.Upload{
		Filename:        "capa.png",
		ContentType:     "image/png",
		Content:         strings.NewReader("png-bytes"),
		Path:            "products/capa.png",
		AddRandomSuffix: &noSuffix,
	})
	require.NoError(t, err)
	assert.Equal(t, "products/capa.png", res.Pathname)
	assert.Equal(t, int64(9), res.Size)
	assert.True(t, env.Storage.Exists(ctx, "products/capa.png"))

	require.NoError(t, c.DeleteMedia(ctx, "products/capa.png"))
	assert.False(t, env.Storage.Exists(ctx, "products/capa.png"))
}

func TestGetProductFallsBackToMirror(t *testing.T) {
	var gotCorrelation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCorrelation = r.Header.Get(correlation.Header)
		_, _ = io.WriteString(w, `{"success":true,"product":{"id":5,"name":"Saia","price":120.5,"original_price":null}}`)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-42")
	p, err := c.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Saia", p.Name)
	assert.True(t, decimal.RequireFromString("120.5").Equal(p.Price))
	assert.False(t, p.OriginalPrice.Valid)
	assert.Equal(t, "cid-42", gotCorrelation)
}

func TestNonJSONReplyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListSizes(context.Background(), 1)
	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.Cause(), "status 502")
}

func TestProductPatchAlwaysSendsOriginalPrice(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.NewDecoder(bytes.NewReader(raw)).Decode(&body))
		_, _ = io.WriteString(w, `{"success":true,"data":{}}`)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	err = c.UpdateProduct(context.Background(), 3, client.ProductPatch{
		Name:          "Saia",
		Price:         decimal.RequireFromString("99.90"),
		StockQuantity: 0,
		IsActive:      false,
	})
	require.NoError(t, err)

	require.Contains(t, body, "original_price")
	assert.Nil(t, body["original_price"])
	assert.Equal(t, 99.9, body["price"])
	assert.Equal(t, false, body["is_active"])
	assert.Equal(t, float64(0), body["stock_quantity"])
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := client.New("localhost:8080")
	assert.Error(t, err)
}
