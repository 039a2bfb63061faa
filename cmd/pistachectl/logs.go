package main

import (
	"text/tabwriter"

	"github.com/smallbiznis/pistache/internal/console/logviewer"
	"github.com/spf13/cobra"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		level, date, search string
		page                int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Consulta o log administrativo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v := logviewer.New(logviewer.Params{API: a.api, Messages: a.msgs, Log: a.log})

			filter := logviewer.Filter{Page: page, Level: level, Date: date, Search: search}
			if err := v.Apply(ctx, filter); err != nil {
				return failure(v.View().Result.Message, err)
			}

			view := v.View()
			resp := view.Result.Data
			s := resp.Stats
			a.printf("total %d | erro %d | aviso %d | info %d | sucesso %d | debug %d\n",
				s.Total, s.Error, s.Warning, s.Info, s.Success, s.Debug)

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, e := range resp.Logs {
				ctxName := ""
				if e.Context != nil {
					ctxName = *e.Context
				}
				a.fprintRow(tw, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Level, ctxName, e.Message)
			}
			_ = tw.Flush()
			a.printf("página %d de %d (%d registros)\n", view.Filter.Page, resp.Pagination.Pages, resp.Pagination.Total)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&level, "level", logviewer.AllLevels, "all, error, warning, info, success ou debug")
	f.StringVar(&date, "date", "today", "today, week, month ou all")
	f.StringVar(&search, "search", "", "busca em mensagem, contexto e usuário")
	f.IntVar(&page, "page", 1, "página")
	return cmd
}
