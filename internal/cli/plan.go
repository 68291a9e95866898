package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lazy-tourist-be/internal/bootstrap"
	"lazy-tourist-be/internal/config"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/internal/tracer"
	"lazy-tourist-be/pkg/events"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type planFlags struct {
	provider  string
	model     string
	maxTurns  int
	outputDir string
	presenter string
	verbose   bool
}

func (f planFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Ai.LLMProvider = f.provider
	}
	if flags.Changed("model") {
		cfg.Ai.LLMModel = f.model
	}
	if flags.Changed("max-turns") {
		cfg.Planner.MaxTurns = f.maxTurns
	}
	if flags.Changed("output-dir") {
		cfg.Planner.OutputDir = f.outputDir
	}
	if flags.Changed("presenter") {
		cfg.Planner.PresenterMode = f.presenter
	}
}

func newPlanCmd() *cobra.Command {
	var f planFlags
	cmd := &cobra.Command{
		Use:   "plan [request...]",
		Short: "Plan a trip interactively",
		Example: `  tripplanner plan "3 days in Paris from NYC for 2 adults, budget $2000"
  tripplanner plan --provider gemini --model gemini-1.5-flash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			f.apply(cmd, cfg)
			return runPlan(cmd, cfg, f.verbose, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider: ollama, huggingface or gemini")
	cmd.Flags().StringVar(&f.model, "model", "", "LLM model name")
	cmd.Flags().IntVar(&f.maxTurns, "max-turns", 0, "maximum user turns per session")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for saved itineraries")
	cmd.Flags().StringVar(&f.presenter, "presenter", "", "itinerary presenter: markdown or llm")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log debug output to the log file")
	return cmd
}

func runPlan(cmd *cobra.Command, cfg *config.Config, verbose bool, request string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.InitTracer("lazy-tourist-cli")
	defer shutdownTracer(context.Background())

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	log := logger.NewFileLogger(cfg.App.LogFilePath, level)
	defer log.Sync()

	planner, err := bootstrap.NewPlanner(ctx, cfg, log)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	store, closeStore, err := bootstrap.NewCheckpointStore(ctx, cfg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer closeStore()

	var publisher events.Publisher = events.NopPublisher{}
	if natsPub, closeNats := bootstrap.NewNatsPublisher(cfg, log); natsPub != nil {
		publisher = natsPub
		defer closeNats()
	}

	driver := bootstrap.NewDriver(planner, store, publisher, cfg, log)
	code := NewTerminal(driver, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx, request)
	if code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
