// Package cli is the tripplanner command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"lazy-tourist-be/internal/config"

	"github.com/spf13/cobra"
)

// Exit codes of the tripplanner binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInputClosed = 2
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tripplanner",
		Short: "Lazy Tourist - conversational trip planner",
		Long: `Lazy Tourist turns a free-text trip request into a day-by-day itinerary
with flights, hotel, activities and a budget estimate, then refines it with you
until you are happy and saves it as Markdown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgFile != "" {
				os.Setenv("CONFIG_FILE", cfgFile)
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables still win)")

	root.AddCommand(newPlanCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newCatalogCmd())
	return root
}

// Execute runs the root command and maps its outcome to an exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, err)
	return ExitFailure
}

func loadConfig() *config.Config {
	return config.Load()
}
