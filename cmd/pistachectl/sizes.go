package main

import (
	"bufio"
	"context"
	"strings"
	"text/tabwriter"

	"github.com/smallbiznis/pistache/internal/console/sizes"
	"github.com/spf13/cobra"
)

func newSizesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "Gerencia tamanhos e estoque de um produto",
	}

	manager := func(ctx context.Context, raw string) (*sizes.Manager, error) {
		productID, err := parseID(raw, "produto")
		if err != nil {
			return nil, err
		}
		m := sizes.New(sizes.Params{
			API:       a.api,
			ProductID: productID,
			Clock:     a.clock,
			Messages:  a.msgs,
			Log:       a.log,
		})
		if err := m.Load(ctx); err != nil {
			return nil, failure(m.View().Banner, err)
		}
		return m, nil
	}

	list := &cobra.Command{
		Use:   "list <produto>",
		Short: "Lista os tamanhos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printSizes(m)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <produto> <tamanho> <estoque>",
		Short: "Adiciona um tamanho",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stock, err := parseStock(args[2])
			if err != nil {
				return err
			}
			if err := m.Add(cmd.Context(), args[1], stock); err != nil {
				return failure(m.View().Banner, err)
			}
			a.printSizes(m)
			return nil
		},
	}

	setStock := &cobra.Command{
		Use:   "set-stock <produto> <tamanho> <estoque>",
		Short: "Altera apenas o estoque, mantendo o status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stock, err := parseStock(args[2])
			if err != nil {
				return err
			}
			edit, err := m.BeginInlineEdit(args[1])
			if err != nil {
				return err
			}
			edit.Set(stock)
			if err := edit.Key(cmd.Context(), "Enter"); err != nil {
				return failure(m.View().Banner, err)
			}
			a.printSizes(m)
			return nil
		},
	}

	var (
		newLabel string
		newStock int
		active   bool
	)
	edit := &cobra.Command{
		Use:   "edit <produto> <tamanho>",
		Short: "Edita rótulo, estoque e status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := m.OpenEdit(args[1]); err != nil {
				return err
			}
			if cmd.Flags().Changed("size") {
				m.SetEditSize(newLabel)
			}
			if cmd.Flags().Changed("stock") {
				m.SetEditStock(newStock)
			}
			if cmd.Flags().Changed("active") {
				m.SetEditActive(active)
			}
			if err := m.SaveEdit(cmd.Context()); err != nil {
				if form := m.View().Edit; form != nil {
					return failure(form.Error, err)
				}
				return err
			}
			a.printSizes(m)
			return nil
		},
	}
	edit.Flags().StringVar(&newLabel, "size", "", "novo rótulo")
	edit.Flags().IntVar(&newStock, "stock", 0, "novo estoque")
	edit.Flags().BoolVar(&active, "active", true, "disponível para venda (ignorado com estoque 0)")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <produto> <tamanho>",
		Short: "Remove um tamanho após confirmação",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m.RequestDelete(args[1])
			if !yes {
				a.printf("%s [s/N] ", m.View().DeletePrompt)
				answer, _ := bufio.NewReader(a.in).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "s" && answer != "sim" && answer != "y" && answer != "yes" {
					m.CancelDelete()
					return nil
				}
			}
			if err := m.ConfirmDelete(cmd.Context()); err != nil {
				return failure(m.View().Banner, err)
			}
			a.printSizes(m)
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "não pedir confirmação")

	cmd.AddCommand(list, add, setStock, edit, del)
	return cmd
}

func (a *app) printSizes(m *sizes.Manager) {
	view := m.View()
	if view.Notice != "" {
		a.printf("%s\n", view.Notice)
	}
	if view.Banner != "" {
		a.printf("%s\n", view.Banner)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	a.fprintRow(tw, "ID", "TAMANHO", "ESTOQUE", "ATIVO")
	for _, s := range view.Sizes.Data {
		a.fprintRow(tw, s.ID, s.Size, s.StockQuantity, yesNo(s.IsActive))
	}
	t := view.Totals
	a.fprintRow(tw, "", "total", t.TotalStock, "")
	a.fprintRow(tw, "", "em estoque", t.SizesInStock, "")
	a.fprintRow(tw, "", "tamanhos", t.TotalSizes, "")
}
