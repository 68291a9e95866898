package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lazy-tourist-be/internal/bootstrap"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/planner/catalog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the routes and destinations the catalog knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			source, err := bootstrap.NewCatalogSource(cfg)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			keys, err := catalog.NewClient(source, logger.NewNopLogger()).Keys(context.Background())
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			kinds := make([]string, 0, len(keys))
			for kind := range keys {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)

			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				color.New(color.FgCyan, color.Bold).Fprintf(out, "%s (%d)\n", kind, len(keys[kind]))
				fmt.Fprintf(out, "  %s\n", strings.Join(keys[kind], ", "))
			}
			return nil
		},
	}
}
