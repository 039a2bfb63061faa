package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/smallbiznis/pistache/internal/console/messages"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs, built once flags are parsed.
type app struct {
	v     *viper.Viper
	out   io.Writer
	in    io.Reader
	log   *zap.Logger
	api   *client.Client
	msgs  messages.Catalog
	clock clock.Clock
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), clock: clock.SystemClock{}}

	root := &cobra.Command{
		Use:           "pistachectl",
		Short:         "Administra produtos, tamanhos, categorias e logs da loja",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "admin API base URL")
	flags.String("lang", "pt-BR", "message language (pt-BR or en)")
	flags.Bool("verbose", false, "log requests to stderr")
	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix("PISTACHE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newProductCmd(a),
		newSizesCmd(a),
		newCategoriesCmd(a),
		newLogsCmd(a),
		newMediaCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()
	a.msgs = messages.Lookup(a.v.GetString("lang"))

	a.log = zap.NewNop()
	if a.v.GetBool("verbose") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.log = log
	}

	api, err := client.New(a.v.GetString("server"), client.WithLogger(a.log), client.WithUserAgent("pistachectl"))
	if err != nil {
		return err
	}
	a.api = api
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s inválido: %q", name, raw)
	}
	return id, nil
}

func parseStock(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("estoque inválido: %q", raw)
	}
	return n, nil
}

// failure prefers the message the workflow already rendered for the user.
func failure(rendered string, err error) error {
	if rendered != "" {
		return errors.New(rendered)
	}
	return err
}
