package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func newVersionCmd(cfg interface{ GetAppName() string }) *cobra.Command {
	var banner bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output, _ := cmd.Root().PersistentFlags().GetString("output"); output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			if banner {
				fig := figure.NewFigure(cfg.GetAppName(), "cybermedium", true)
				fmt.Fprintln(cmd.OutOrStdout(), fig.String())
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bazaar version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
	cmd.Flags().BoolVar(&banner, "banner", true, "Print the application banner")
	return cmd
}
