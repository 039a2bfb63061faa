package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/smallbiznis/pistache/internal/config"
	"github.com/smallbiznis/pistache/internal/server/servertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Product json.RawMessage `json:"product"`
	Error   string          `json:"error"`
}

func do(t *testing.T, env *servertest.Env, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := env.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	env := servertest.New(t)
	resp, err := env.Server.Client().Get(env.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := servertest.New(t)
	status, out := do(t, env, http.MethodGet, "/api/admin/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestProductGetMirrorsProductAndPatchUpdates(t *testing.T) {
	env := servertest.New(t)
	p := env.SeedProduct(t, "Vestido Midi", "199.90")
	path := fmt.Sprintf("/api/admin/products/%d", p.ID)

	status, out := do(t, env, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.JSONEq(t, string(out.Data), string(out.Product))

	status, out = do(t, env, http.MethodPatch, path, map[string]any{
		"name":           "Vestido Longo",
		"description":    "Linho",
		"price":          149.9,
		"original_price": 199.9,
		"stock_quantity": 3,
		"is_active":      false,
	})
	require.Equal(t, http.StatusOK, status, out.Error)

	var got struct {
		Name          string   `json:"name"`
		Price         float64  `json:"price"`
		OriginalPrice *float64 `json:"original_price"`
		IsActive      bool     `json:"is_active"`
	}
	_, out = do(t, env, http.MethodGet, path, nil)
	require.NoError(t, json.Unmarshal(out.Data, &got))
	assert.Equal(t, "Vestido Longo", got.Name)
	assert.InDelta(t, 149.9, got.Price, 0.001)
	require.NotNil(t, got.OriginalPrice)
	assert.False(t, got.IsActive)

	status, out = do(t, env, http.MethodGet, "/api/admin/products/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Produto não encontrado", out.Error)

	status, _ = do(t, env, http.MethodPatch, path, map[string]any{"price": -1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSizesLifecycle(t *testing.T) {
	env := servertest.New(t)
	p := env.SeedProduct(t, "Camisa", "89.00")
	path := fmt.Sprintf("/api/admin/products/%d/sizes", p.ID)

	status, out := do(t, env, http.MethodPost, path, map[string]any{"size": "42", "stock_quantity": 5})
	require.Equal(t, http.StatusCreated, status, out.Error)
	assert.True(t, out.Success)

	status, out = do(t, env, http.MethodPost, path, map[string]any{"size": "42", "stock_quantity": 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, `Tamanho "42" já existe para este produto`, out.Error)

	var created struct {
		Sizes []struct {
			ID            int64  `json:"id"`
			Size          string `json:"size"`
			StockQuantity int    `json:"stock_quantity"`
			IsActive      bool   `json:"is_active"`
		} `json:"sizes"`
	}
	_, out = do(t, env, http.MethodGet, path, nil)
	require.NoError(t, json.Unmarshal(out.Data, &created))
	require.Len(t, created.Sizes, 1)

	status, out = do(t, env, http.MethodPut, path, map[string]any{
		"id":             created.Sizes[0].ID,
		"original_size":  "42",
		"size":           "42",
		"stock_quantity": 0,
		"is_active":      true,
	})
	require.Equal(t, http.StatusOK, status, out.Error)
	require.NoError(t, json.Unmarshal(out.Data, &created))
	assert.False(t, created.Sizes[0].IsActive)

	status, out = do(t, env, http.MethodDelete, path+"?size=42", nil)
	require.Equal(t, http.StatusOK, status, out.Error)
	require.NoError(t, json.Unmarshal(out.Data, &created))
	assert.Empty(t, created.Sizes)

	status, out = do(t, env, http.MethodPost, path, map[string]any{"size": " ", "stock_quantity": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Tamanho é obrigatório", out.Error)
}

func TestCategoryEndpoints(t *testing.T) {
	env := servertest.New(t)
	p := env.SeedProduct(t, "Saia", "59.90")
	base := fmt.Sprintf("/api/admin/products/%d", p.ID)

	var ids []int64
	for _, name := range []string{"Verão", "Inverno", "Festa"} {
		status, out := do(t, env, http.MethodPost, "/api/admin/categories", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, status, out.Error)
		var c struct {
			ID   int64  `json:"id"`
			Slug string `json:"slug"`
		}
		require.NoError(t, json.Unmarshal(out.Data, &c))
		ids = append(ids, c.ID)
	}

	status, out := do(t, env, http.MethodPost, "/api/admin/categories", map[string]any{"name": "verao"})
	assert.Equal(t, http.StatusConflict, status)

	status, out = do(t, env, http.MethodPost, base+"/categories", map[string]any{"categoryId": ids[0]})
	require.Equal(t, http.StatusOK, status, out.Error)

	status, out = do(t, env, http.MethodGet, base+"/available-categories?search=vera", nil)
	require.Equal(t, http.StatusOK, status, out.Error)
	var available struct {
		Categories []struct {
			ID           int64 `json:"id"`
			IsAssociated bool  `json:"is_associated"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &available))
	require.Len(t, available.Categories, 1)
	assert.True(t, available.Categories[0].IsAssociated)

	status, out = do(t, env, http.MethodPut, base+"/categories", map[string]any{"categoryIds": []int64{ids[1], ids[2]}})
	require.Equal(t, http.StatusOK, status, out.Error)
	var replaced struct {
		Added   []int64 `json:"added"`
		Removed []int64 `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &replaced))
	assert.Equal(t, []int64{ids[1], ids[2]}, replaced.Added)
	assert.Equal(t, []int64{ids[0]}, replaced.Removed)

	status, _ = do(t, env, http.MethodDelete, fmt.Sprintf("%s/categories?categoryId=%d", base, ids[1]), nil)
	require.Equal(t, http.StatusOK, status)

	_, out = do(t, env, http.MethodGet, base+"/categories", nil)
	var associated []struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &associated))
	require.Len(t, associated, 1)
	assert.Equal(t, ids[2], associated[0].ID)

	status, out = do(t, env, http.MethodDelete, base+"/categories?categoryId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ID de categoria inválido", out.Error)
}

func TestLogsFilterAndStats(t *testing.T) {
	env := servertest.New(t)
	p := env.SeedProduct(t, "Blusa", "39.90")

	do(t, env, http.MethodPost, fmt.Sprintf("/api/admin/products/%d/sizes", p.ID), map[string]any{"size": "P", "stock_quantity": 1})
	do(t, env, http.MethodPost, fmt.Sprintf("/api/admin/products/%d/sizes", p.ID), map[string]any{"size": "P", "stock_quantity": 1})
	do(t, env, http.MethodDelete, fmt.Sprintf("/api/admin/products/%d/sizes?size=P", p.ID), nil)

	status, out := do(t, env, http.MethodGet, "/api/admin/logs?page=1&limit=50&level=warning&date=today", nil)
	require.Equal(t, http.StatusOK, status, out.Error)

	var resp struct {
		Logs []struct {
			Level string `json:"level"`
		} `json:"logs"`
		Pagination struct {
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
		Stats struct {
			Total   int `json:"total"`
			Success int `json:"success"`
			Warning int `json:"warning"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "warning", resp.Logs[0].Level)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Pages)
	assert.Equal(t, 2, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.Success)
	assert.Equal(t, 1, resp.Stats.Warning)

	status, out = do(t, env, http.MethodGet, "/api/admin/logs?level=fatal", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Nível de log inválido", out.Error)
}

func TestNewsletterIsIdempotentAndRateLimited(t *testing.T) {
	env := servertest.New(t, servertest.WithStorefront(func(cfg *config.StorefrontConfig) {
		cfg.RateLimits.Newsletter = config.RateLimitRule{Rate: 0.001, Burst: 3}
	}))

	status, out := do(t, env, http.MethodPost, "/api/newsletter", map[string]any{"email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, status, out.Error)

	status, _ = do(t, env, http.MethodPost, "/api/newsletter", map[string]any{"email": "ANA@example.com"})
	assert.Equal(t, http.StatusOK, status)

	status, out = do(t, env, http.MethodPost, "/api/newsletter", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "E-mail inválido", out.Error)

	status, out = do(t, env, http.MethodPost, "/api/newsletter", map[string]any{"email": "bia@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.False(t, out.Success)
}

func multipartUpload(t *testing.T, env *servertest.Env, filename, contentType string, content []byte, fields map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+"/api/admin/media", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := env.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestMediaUploadServeAndDelete(t *testing.T) {
	env := servertest.New(t)

	status, out := multipartUpload(t, env, "front.jpg", "image/jpeg", []byte("jpeg"), map[string]string{
		"path":            "products/1/front.jpg",
		"addRandomSuffix": "false",
	})
	require.Equal(t, http.StatusCreated, status, out.Error)

	var uploaded struct {
		URL      string `json:"url"`
		Pathname string `json:"pathname"`
		Size     int64  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &uploaded))
	assert.Equal(t, "products/1/front.jpg", uploaded.Pathname)
	assert.Equal(t, "http://media.test/uploads/products/1/front.jpg", uploaded.URL)
	assert.EqualValues(t, 4, uploaded.Size)

	resp, err := env.Server.Client().Get(env.Server.URL + "/uploads/products/1/front.jpg")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(body))
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	status, _ = do(t, env, http.MethodDelete, "/api/admin/media?pathname=products/1/front.jpg", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, env, http.MethodDelete, "/api/admin/media?pathname=products/1/front.jpg", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMediaUploadRejectsUnsupportedType(t *testing.T) {
	env := servertest.New(t)

	status, out := multipartUpload(t, env, "notes.txt", "text/plain", []byte("hi"), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Tipo de arquivo não permitido", out.Error)
}
