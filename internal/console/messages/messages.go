// Package messages holds the user-facing strings of the admin console.
package messages

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/smallbiznis/pistache/internal/console/client"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Supported lists the console locales; the first one is the fallback.
var Supported = []language.Tag{language.BrazilianPortuguese, language.English}

var (
	bundle  = newBundle()
	matcher = language.NewMatcher(Supported)

	PtBR = newCatalog(language.BrazilianPortuguese)
	En   = newCatalog(language.English)
)

func newBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.BrazilianPortuguese)
	for _, tag := range Supported {
		if _, err := b.LoadMessageFileFS(localeFS, "locales/active."+tag.String()+".json"); err != nil {
			panic(fmt.Sprintf("messages: load %s: %v", tag, err))
		}
	}
	return b
}

// Catalog is one locale's set of console strings. Fallbacks are used when the
// server fails without a message of its own.
type Catalog struct {
	Tag language.Tag

	ConnectionError string
	Unexpected      string

	LoadSizesFailed   string
	AddSizeFailed     string
	UpdateStockFailed string
	UpdateSizeFailed  string
	DeleteSizeFailed  string
	SizeRequired      string
	StockNegative     string
	SizeAdded         string
	StockUpdated      string
	SizeUpdated       string
	SizeDeleted       string

	LoadCategoriesFailed   string
	AddCategoriesFailed    string
	AddCategoryFailed      string
	RemoveCategoryFailed   string
	RemoveCategoriesFailed string
	ServerUnreachable      string
	CategoriesSaved        string

	LoadProductFailed string
	InvalidProduct    string
	SaveFailed        string
	Saved             string

	LoadLogsFailed string

	loc *i18n.Localizer
}

func newCatalog(tag language.Tag) Catalog {
	loc := i18n.NewLocalizer(bundle, tag.String())
	text := func(id string) string {
		return loc.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
	}
	return Catalog{
		Tag:             tag,
		ConnectionError: text("connection_error"),
		Unexpected:      text("unexpected"),

		LoadSizesFailed:   text("load_sizes_failed"),
		AddSizeFailed:     text("add_size_failed"),
		UpdateStockFailed: text("update_stock_failed"),
		UpdateSizeFailed:  text("update_size_failed"),
		DeleteSizeFailed:  text("delete_size_failed"),
		SizeRequired:      text("size_required"),
		StockNegative:     text("stock_negative"),
		SizeAdded:         text("size_added"),
		StockUpdated:      text("stock_updated"),
		SizeUpdated:       text("size_updated"),
		SizeDeleted:       text("size_deleted"),

		LoadCategoriesFailed:   text("load_categories_failed"),
		AddCategoriesFailed:    text("add_categories_failed"),
		AddCategoryFailed:      text("add_category_failed"),
		RemoveCategoryFailed:   text("remove_category_failed"),
		RemoveCategoriesFailed: text("remove_categories_failed"),
		ServerUnreachable:      text("server_unreachable"),
		CategoriesSaved:        text("categories_saved"),

		LoadProductFailed: text("load_product_failed"),
		InvalidProduct:    text("invalid_product"),
		SaveFailed:        text("save_failed"),
		Saved:             text("saved"),

		LoadLogsFailed: text("load_logs_failed"),

		loc: loc,
	}
}

// Lookup picks the catalog that best matches a language tag such as "en-US"
// or an Accept-Language value. Unknown or empty tags get pt-BR.
func Lookup(lang string) Catalog {
	_, idx := language.MatchStrings(matcher, strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if Supported[idx] == language.English {
		return En
	}
	return PtBR
}

// Describe renders err for display. Transport failures become
// "<ConnectionError>: <cause>", server failures show the server message or
// fallback when the server sent none.
func (c Catalog) Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return fmt.Sprintf("%s: %s", c.ConnectionError, transportErr.Cause())
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if strings.TrimSpace(apiErr.Message) != "" {
			return apiErr.Message
		}
		return fallback
	}
	if fallback != "" {
		return fallback
	}
	return c.Unexpected
}

func (c Catalog) DeleteConfirmation(label string) string {
	return c.render("delete_prompt", map[string]any{"Label": label})
}

func (c Catalog) SizeLimit(max int) string {
	return c.render("size_too_long", map[string]any{"Max": max})
}

func (c Catalog) render(id string, data map[string]any) string {
	loc := c.loc
	if loc == nil {
		loc = PtBR.loc
	}
	return loc.MustLocalize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
}
