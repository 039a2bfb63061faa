package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	productsizedomain "github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/storage"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
)

func productPath(productID int64, suffix string) string {
	return "/api/admin/products/" + strconv.FormatInt(productID, 10) + suffix
}

// -------- Products --------

func (c *Client) ListProducts(ctx context.Context, name string) ([]productdomain.Product, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	var out []productdomain.Product
	if err := c.getJSON(ctx, "/api/admin/products", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct reads the product from data, falling back to the product mirror.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*productdomain.Product, error) {
	r := request{method: http.MethodGet, path: productPath(productID, "")}
	env, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	raw := env.Data
	if len(raw) == 0 || string(raw) == "null" {
		raw = env.Product
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &TransportError{Method: r.method, URL: c.endpoint(r.path, nil), Err: fmt.Errorf("response carries no product")}
	}
	var out productdomain.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransportError{Method: r.method, URL: c.endpoint(r.path, nil), Err: err}
	}
	return &out, nil
}

// ProductPatch is the full scalar field set the editor saves. OriginalPrice is
// always sent, as null when absent.
type ProductPatch struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	StockQuantity int              `json:"stock_quantity"`
	IsActive      bool             `json:"is_active"`
}

func (c *Client) UpdateProduct(ctx context.Context, productID int64, patch ProductPatch) error {
	return c.sendJSON(ctx, http.MethodPatch, productPath(productID, ""), patch, nil)
}

// -------- Categories --------

func (c *Client) ListCategories(ctx context.Context) ([]categorydomain.Category, error) {
	var out []categorydomain.Category
	if err := c.getJSON(ctx, "/api/admin/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, req categorydomain.CreateRequest) (*categorydomain.Category, error) {
	var out categorydomain.Category
	if err := c.sendJSON(ctx, http.MethodPost, "/api/admin/categories", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProductCategories(ctx context.Context, productID int64) ([]categorydomain.Category, error) {
	var out []categorydomain.Category
	if err := c.getJSON(ctx, productPath(productID, "/categories"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAvailableCategories(ctx context.Context, productID int64, search string) ([]categorydomain.AvailableCategory, error) {
	query := url.Values{}
	query.Set("search", search)
	var out struct {
		Categories []categorydomain.AvailableCategory `json:"categories"`
	}
	if err := c.getJSON(ctx, productPath(productID, "/available-categories"), query, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) AddProductCategory(ctx context.Context, productID, categoryID int64) error {
	req := categorydomain.AssociateRequest{CategoryID: categoryID}
	return c.sendJSON(ctx, http.MethodPost, productPath(productID, "/categories"), req, nil)
}

func (c *Client) RemoveProductCategory(ctx context.Context, productID, categoryID int64) error {
	query := url.Values{}
	query.Set("categoryId", strconv.FormatInt(categoryID, 10))
	return c.call(ctx, request{method: http.MethodDelete, path: productPath(productID, "/categories"), query: query}, nil)
}

// ReplaceProductCategories applies the whole selection in one server transaction.
func (c *Client) ReplaceProductCategories(ctx context.Context, productID int64, categoryIDs []int64) (*categorydomain.ReplaceResult, error) {
	req := categorydomain.ReplaceRequest{CategoryIDs: categoryIDs}
	var out categorydomain.ReplaceResult
	if err := c.sendJSON(ctx, http.MethodPut, productPath(productID, "/categories"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -------- Sizes --------

type sizesData struct {
	Sizes []productsizedomain.ProductSize `json:"sizes"`
}

func (c *Client) ListSizes(ctx context.Context, productID int64) ([]productsizedomain.ProductSize, error) {
	var out sizesData
	if err := c.getJSON(ctx, productPath(productID, "/sizes"), nil, &out); err != nil {
		return nil, err
	}
	return out.Sizes, nil
}

func (c *Client) CreateSize(ctx context.Context, productID int64, req productsizedomain.CreateRequest) error {
	return c.sendJSON(ctx, http.MethodPost, productPath(productID, "/sizes"), req, nil)
}

func (c *Client) UpdateSize(ctx context.Context, productID int64, req productsizedomain.UpdateRequest) error {
	return c.sendJSON(ctx, http.MethodPut, productPath(productID, "/sizes"), req, nil)
}

// DeleteSize removes a size by its label.
func (c *Client) DeleteSize(ctx context.Context, productID int64, label string) error {
	query := url.Values{}
	query.Set("size", label)
	return c.call(ctx, request{method: http.MethodDelete, path: productPath(productID, "/sizes"), query: query}, nil)
}

// -------- Logs --------

func (c *Client) ListLogs(ctx context.Context, req systemlogdomain.ListRequest) (*systemlogdomain.ListResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page.Page))
	query.Set("limit", strconv.Itoa(req.Limit))
	if req.Level != "" && req.Level != "all" {
		query.Set("level", req.Level)
	}
	if req.Date != "" && req.Date != string(systemlogdomain.DateRangeAll) {
		query.Set("date", req.Date)
	}
	if req.Search != "" {
		query.Set("search", req.Search)
	}
	var out systemlogdomain.ListResponse
	if err := c.getJSON(ctx, "/api/admin/logs", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -------- Media --------

// Upload is one file for the media endpoint. Path and AddRandomSuffix are optional.
type Upload struct {
	Filename        string
	ContentType     string
	Content         io.Reader
	Path            string
	AddRandomSuffix *bool
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) UploadMedia(ctx context.Context, up Upload) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(up.Filename)))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if up.Path != "" {
		if err := w.WriteField("path", up.Path); err != nil {
			return nil, err
		}
	}
	if up.AddRandomSuffix != nil {
		if err := w.WriteField("addRandomSuffix", strconv.FormatBool(*up.AddRandomSuffix)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out storage.UploadResult
	err = c.call(ctx, request{
		method:      http.MethodPost,
		path:        "/api/admin/media",
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMedia(ctx context.Context, pathname string) error {
	query := url.Values{}
	query.Set("pathname", pathname)
	return c.call(ctx, request{method: http.MethodDelete, path: "/api/admin/media", query: query}, nil)
}
