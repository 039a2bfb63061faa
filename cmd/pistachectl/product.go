package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pistache/internal/console/editor"
	"github.com/spf13/cobra"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Consulta e edita produtos",
	}

	load := func(cmd *cobra.Command, raw string) (*editor.Editor, error) {
		productID, err := parseID(raw, "produto")
		if err != nil {
			return nil, err
		}
		ed := editor.New(editor.Params{
			API:       a.api,
			ProductID: productID,
			Clock:     a.clock,
			Messages:  a.msgs,
			Log:       a.log,
		})
		if err := ed.Load(cmd.Context()); err != nil {
			return nil, failure(ed.View().Page.Message, err)
		}
		return ed, nil
	}

	var name string
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista produtos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.api.ListProducts(cmd.Context(), name)
			if err != nil {
				return failure(a.msgs.Describe(err, a.msgs.Unexpected), err)
			}
			for _, p := range products {
				a.printf("%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), yesNo(p.IsActive))
			}
			return nil
		},
	}
	list.Flags().StringVar(&name, "name", "", "filtra pelo nome")

	show := &cobra.Command{
		Use:   "show <produto>",
		Short: "Mostra um produto e suas categorias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			a.printProduct(ed)
			return nil
		},
	}

	var (
		newName, description, price, originalPrice string
		stock                                      int
		active                                     bool
	)
	update := &cobra.Command{
		Use:   "update <produto>",
		Short: "Altera os campos do produto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				ed.SetName(newName)
			}
			if flags.Changed("description") {
				ed.SetDescription(description)
			}
			if flags.Changed("price") {
				d, err := decimal.NewFromString(strings.TrimSpace(price))
				if err != nil {
					return fmt.Errorf("preço inválido: %q", price)
				}
				ed.SetPrice(d)
			}
			if flags.Changed("original-price") {
				if strings.TrimSpace(originalPrice) == "" {
					ed.SetOriginalPrice(nil)
				} else {
					d, err := decimal.NewFromString(strings.TrimSpace(originalPrice))
					if err != nil {
						return fmt.Errorf("preço original inválido: %q", originalPrice)
					}
					ed.SetOriginalPrice(&d)
				}
			}
			if flags.Changed("stock") {
				ed.SetStockQuantity(stock)
			}
			if flags.Changed("active") {
				ed.SetActive(active)
			}
			if !ed.Dirty() {
				a.printf("%s\n", "nada a alterar")
				return nil
			}
			if err := ed.Save(cmd.Context()); err != nil {
				return failure(ed.View().Error, err)
			}
			a.printf("%s\n", ed.View().Notice)
			a.printProduct(ed)
			return nil
		},
	}
	f := update.Flags()
	f.StringVar(&newName, "name", "", "nome")
	f.StringVar(&description, "description", "", "descrição")
	f.StringVar(&price, "price", "", "preço")
	f.StringVar(&originalPrice, "original-price", "", "preço original; vazio remove")
	f.IntVar(&stock, "stock", 0, "estoque")
	f.BoolVar(&active, "active", true, "ativo")

	cmd.AddCommand(list, show, update)
	return cmd
}

func (a *app) printProduct(ed *editor.Editor) {
	view := ed.View()
	p := view.Page.Data.Product
	a.printf("ID:          %d\n", p.ID)
	a.printf("Nome:        %s\n", p.Name)
	if p.Description != nil {
		a.printf("Descrição:   %s\n", *p.Description)
	}
	a.printf("Preço:       %s\n", p.Price.StringFixed(2))
	if p.OriginalPrice.Valid {
		a.printf("Preço orig.: %s\n", p.OriginalPrice.Decimal.StringFixed(2))
	}
	a.printf("Estoque:     %d\n", p.StockQuantity)
	a.printf("Ativo:       %s\n", yesNo(p.IsActive))

	names := make([]string, 0, len(view.Page.Data.ProductCategories))
	for _, c := range view.Page.Data.ProductCategories {
		names = append(names, c.Name)
	}
	a.printf("Categorias:  %s\n", strings.Join(names, ", "))
}
