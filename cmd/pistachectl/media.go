package main

import (
	"mime"
	"os"
	"path/filepath"

	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/spf13/cobra"
)

func newMediaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Envia e remove imagens de produtos",
	}

	var (
		target      string
		contentType string
		noSuffix    bool
	)
	upload := &cobra.Command{
		Use:   "upload <arquivo>",
		Short: "Envia um arquivo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			ct := contentType
			if ct == "" {
				ct = mime.TypeByExtension(filepath.Ext(args[0]))
			}
			up := client.Upload{
				Filename:    filepath.Base(args[0]),
				ContentType: ct,
				Content:     file,
				Path:        target,
			}
			if noSuffix {
				off := false
				up.AddRandomSuffix = &off
			}

			res, err := a.api.UploadMedia(cmd.Context(), up)
			if err != nil {
				return failure(a.msgs.Describe(err, a.msgs.Unexpected), err)
			}
			a.printf("%s\n%s (%d bytes)\n", res.URL, res.Pathname, res.Size)
			return nil
		},
	}
	upload.Flags().StringVar(&target, "path", "", "caminho no bucket")
	upload.Flags().StringVar(&contentType, "content-type", "", "tipo do arquivo; padrão pela extensão")
	upload.Flags().BoolVar(&noSuffix, "no-suffix", false, "não acrescentar sufixo aleatório")

	del := &cobra.Command{
		Use:   "delete <caminho>",
		Short: "Remove um arquivo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteMedia(cmd.Context(), args[0]); err != nil {
				return failure(a.msgs.Describe(err, a.msgs.Unexpected), err)
			}
			a.printf("removido: %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(upload, del)
	return cmd
}
