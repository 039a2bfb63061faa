// Package editor is the console workflow for a product's scalar fields.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/smallbiznis/pistache/internal/console/messages"
	"github.com/smallbiznis/pistache/internal/console/state"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type API interface {
	GetProduct(ctx context.Context, productID int64) (*productdomain.Product, error)
	ListCategories(ctx context.Context) ([]categorydomain.Category, error)
	ListProductCategories(ctx context.Context, productID int64) ([]categorydomain.Category, error)
	UpdateProduct(ctx context.Context, productID int64, patch client.ProductPatch) error
}

var ErrNotLoaded = errors.New("product_not_loaded")

// Page is everything the editor loads up front.
type Page struct {
	Product           productdomain.Product
	Categories        []categorydomain.Category
	ProductCategories []categorydomain.Category
}

// Form holds the editable scalar fields.
type Form struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	StockQuantity int
	IsActive      bool
}

func formOf(p productdomain.Product) Form {
	f := Form{
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.OriginalPrice.Valid {
		op := p.OriginalPrice.Decimal
		f.OriginalPrice = &op
	}
	return f
}

func (f Form) patch() client.ProductPatch {
	desc := f.Description
	return client.ProductPatch{
		Name:          f.Name,
		Description:   &desc,
		Price:         f.Price,
		OriginalPrice: f.OriginalPrice,
		StockQuantity: f.StockQuantity,
		IsActive:      f.IsActive,
	}
}

// apply writes the saved form back onto the product.
func (f Form) apply(p *productdomain.Product) {
	p.Name = f.Name
	desc := f.Description
	p.Description = &desc
	p.Price = f.Price
	p.OriginalPrice = decimal.NullDecimal{}
	if f.OriginalPrice != nil {
		p.OriginalPrice = decimal.NewNullDecimal(*f.OriginalPrice)
	}
	p.StockQuantity = f.StockQuantity
	p.IsActive = f.IsActive
}

type Params struct {
	API       API
	ProductID int64
	Clock     clock.Clock
	Messages  messages.Catalog
	Log       *zap.Logger
}

type Editor struct {
	api       API
	productID int64
	msgs      messages.Catalog
	log       *zap.Logger
	notice    *state.Notice

	mu      sync.Mutex
	page    state.State[*Page]
	form    Form
	saving  bool
	saveErr string
}

func New(p Params) *Editor {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	msgs := p.Messages
	if msgs.ConnectionError == "" {
		msgs = messages.PtBR
	}
	return &Editor{
		api:       p.API,
		productID: p.ProductID,
		msgs:      msgs,
		log:       log.Named("console.editor").With(zap.Int64("product_id", p.ProductID)),
		notice:    state.NewNotice(clk, state.NoticeTTL),
	}
}

type View struct {
	Page   state.State[*Page]
	Form   Form
	Saving bool
	Error  string
	Notice string
}

// Fatal reports whether the whole page should be replaced by the load error
// and a retry action.
func (v View) Fatal() bool { return v.Page.Phase == state.Error }

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		Page:   e.page,
		Form:   e.form,
		Saving: e.saving,
		Error:  e.saveErr,
		Notice: e.notice.Text(),
	}
}

// Load fetches the product and both category lists concurrently. Any failure
// fails the whole page.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.page.IsLoading() {
		e.mu.Unlock()
		return state.ErrBusy
	}
	e.page = state.State[*Page]{Phase: state.Loading}
	e.mu.Unlock()

	var (
		product         *productdomain.Product
		all, associated []categorydomain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = e.api.GetProduct(gctx, e.productID)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = e.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		associated, err = e.api.ListProductCategories(gctx, e.productID)
		return err
	})
	err := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.page = e.page.Fail(e.msgs.Describe(err, e.msgs.LoadProductFailed))
		e.log.Warn("failed to load product editor", zap.Error(err))
		return err
	}
	if product == nil || product.ID == 0 {
		e.page = e.page.Fail(e.msgs.InvalidProduct)
		return ErrNotLoaded
	}

	e.page = e.page.Succeed(&Page{
		Product:           *product,
		Categories:        all,
		ProductCategories: associated,
	})
	e.form = formOf(*product)
	e.saveErr = ""
	return nil
}

// Retry reloads after a fatal load error.
func (e *Editor) Retry(ctx context.Context) error {
	return e.Load(ctx)
}

func (e *Editor) edit(fn func(*Form)) {
	e.mu.Lock()
	fn(&e.form)
	e.mu.Unlock()
}

func (e *Editor) SetName(name string) { e.edit(func(f *Form) { f.Name = name }) }

func (e *Editor) SetDescription(desc string) { e.edit(func(f *Form) { f.Description = desc }) }

func (e *Editor) SetPrice(price decimal.Decimal) { e.edit(func(f *Form) { f.Price = price }) }

// SetOriginalPrice sets the compare-at price; nil clears it.
func (e *Editor) SetOriginalPrice(price *decimal.Decimal) {
	e.edit(func(f *Form) {
		if price == nil {
			f.OriginalPrice = nil
			return
		}
		p := *price
		f.OriginalPrice = &p
	})
}

func (e *Editor) SetStockQuantity(qty int) { e.edit(func(f *Form) { f.StockQuantity = qty }) }

func (e *Editor) SetActive(active bool) { e.edit(func(f *Form) { f.IsActive = active }) }

// Dirty reports whether the form differs from the loaded product.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.page.Data == nil {
		return false
	}
	loaded := formOf(e.page.Data.Product)
	cur := e.form
	if loaded.Name != cur.Name || loaded.Description != cur.Description ||
		!loaded.Price.Equal(cur.Price) || loaded.StockQuantity != cur.StockQuantity ||
		loaded.IsActive != cur.IsActive {
		return true
	}
	if (loaded.OriginalPrice == nil) != (cur.OriginalPrice == nil) {
		return true
	}
	return loaded.OriginalPrice != nil && !loaded.OriginalPrice.Equal(*cur.OriginalPrice)
}

// Save sends every scalar field. The product shown afterwards is the form as
// sent; the server reply is not read back.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.page.Phase != state.Success || e.page.Data == nil {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.saving {
		e.mu.Unlock()
		return state.ErrBusy
	}
	e.saving = true
	e.saveErr = ""
	form := e.form
	e.mu.Unlock()

	err := e.api.UpdateProduct(ctx, e.productID, form.patch())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		e.saveErr = e.msgs.Describe(err, e.msgs.SaveFailed)
		e.log.Warn("failed to save product", zap.Error(err))
		return err
	}

	page := *e.page.Data
	form.apply(&page.Product)
	e.page = e.page.Succeed(&page)
	e.notice.Set(e.msgs.Saved)
	return nil
}
