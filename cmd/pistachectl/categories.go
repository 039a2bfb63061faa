package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/smallbiznis/pistache/internal/console/categories"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Associa categorias a um produto",
	}

	manager := func(ctx context.Context, raw string) (*categories.Manager, error) {
		productID, err := parseID(raw, "produto")
		if err != nil {
			return nil, err
		}
		m := categories.New(categories.Params{
			API:       a.api,
			ProductID: productID,
			Clock:     a.clock,
			Messages:  a.msgs,
			Log:       a.log,
		})
		if err := m.LoadAssociated(ctx); err != nil {
			return nil, failure(m.View().Banner, err)
		}
		return m, nil
	}

	list := &cobra.Command{
		Use:   "list <produto>",
		Short: "Lista as categorias do produto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printAssociated(m)
			return nil
		},
	}

	var search string
	available := &cobra.Command{
		Use:   "available <produto>",
		Short: "Lista todas as categorias, marcando as associadas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := m.Open(cmd.Context()); err != nil {
				return failure(modalError(m), err)
			}
			if search != "" {
				m.Search(cmd.Context(), search)
				if err := m.SubmitSearch(cmd.Context()); err != nil {
					return failure(modalError(m), err)
				}
			}
			view := m.View()
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			a.fprintRow(tw, "ID", "NOME", "SLUG", "ASSOCIADA")
			for _, c := range view.Modal.Visible() {
				a.fprintRow(tw, c.ID, c.Name, c.Slug, yesNo(c.IsAssociated))
			}
			return nil
		},
	}
	available.Flags().StringVar(&search, "search", "", "filtra pelo nome ou slug")

	add := &cobra.Command{
		Use:   "add <produto> <categoria>",
		Short: "Associa uma categoria",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			categoryID, err := parseID(args[1], "categoria")
			if err != nil {
				return err
			}
			if err := m.AddCategory(cmd.Context(), categoryID); err != nil {
				return failure(m.View().Banner, err)
			}
			a.printAssociated(m)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <produto> <categoria>",
		Short: "Remove a associação de uma categoria",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			categoryID, err := parseID(args[1], "categoria")
			if err != nil {
				return err
			}
			if err := m.RemoveCategory(cmd.Context(), categoryID); err != nil {
				return failure(m.View().Banner, err)
			}
			a.printAssociated(m)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <produto> [categoria...]",
		Short: "Define exatamente as categorias do produto",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			wanted := make([]int64, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := parseID(raw, "categoria")
				if err != nil {
					return err
				}
				wanted = append(wanted, id)
			}
			if err := m.Open(cmd.Context()); err != nil {
				return failure(modalError(m), err)
			}
			selectExactly(m, wanted)

			report, err := m.Save(cmd.Context())
			for _, op := range report.Applied {
				a.printf("%s %d\n", op.Kind, op.CategoryID)
			}
			if err != nil {
				if report.Failed != nil {
					a.printf("falhou: %s %d\n", report.Failed.Kind, report.Failed.CategoryID)
				}
				return failure(modalError(m), err)
			}
			a.printAssociated(m)
			return nil
		},
	}

	cmd.AddCommand(list, available, add, remove, set)
	return cmd
}

// selectExactly toggles the modal selection until it equals wanted, in wanted order.
func selectExactly(m *categories.Manager, wanted []int64) {
	for _, id := range m.View().Modal.Selected {
		m.Toggle(id)
	}
	seen := map[int64]bool{}
	for _, id := range wanted {
		if !seen[id] {
			seen[id] = true
			m.Toggle(id)
		}
	}
}

func modalError(m *categories.Manager) string {
	view := m.View()
	if view.Modal != nil && view.Modal.Error != "" {
		return view.Modal.Error
	}
	return view.Banner
}

func (a *app) printAssociated(m *categories.Manager) {
	view := m.View()
	if view.Notice != "" {
		a.printf("%s\n", view.Notice)
	}
	if len(view.Associated.Data) == 0 {
		a.printf("%s\n", "(nenhuma categoria)")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	a.fprintRow(tw, "ID", "NOME", "SLUG")
	for _, c := range view.Associated.Data {
		a.fprintRow(tw, c.ID, c.Name, fmt.Sprintf("/%s", c.Slug))
	}
}
