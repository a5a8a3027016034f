package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/config"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// NewRootCommand builds the detective command tree
func NewRootCommand() *cobra.Command {
	global := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "detective",
		Short: "Reconcile MOLIT trade records against the building ledger",
		Long: `detective fetches real-estate trade records from the MOLIT open-data feed
and matches each one against the building register, classifying it as an
exact, multiple, or unmatched building.`,
		SilenceUsage: true,
	}
	global.Register(root)

	root.AddCommand(
		newServeCommand(global),
		newReconcileCommand(global),
		newSearchCommand(global),
		newRegionsCommand(global),
	)
	return root
}

// setup loads configuration and builds the logger for a command
func setup(global *GlobalFlags, system string) (*config.Config, *slog.Logger, error) {
	cfg := config.LoadOrEnvWithPath(global.ConfigPath)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loggingCfg := cfg.Observability.Logging
	if global.Verbose {
		loggingCfg.Level = "debug"
	}
	return cfg, logging.NewLoggerWithSystem(loggingCfg, system), nil
}

func newServeCommand(global *GlobalFlags) *cobra.Command {
	flags := &ServeFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(global, "api")
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			return RunServe(app, flags)
		},
	}
	cmd.Flags().IntVar(&flags.Port, "port", 0, "Port to listen on (default: server.port)")
	return cmd
}

func newReconcileCommand(global *GlobalFlags) *cobra.Command {
	flags := &SearchFlags{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile one month of trades for one property type",
		Example: `  detective reconcile --region 11680 --period 202403
  detective reconcile --region 11680 --period 202403 --type apartment -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(global.Output)
			if err != nil {
				return err
			}
			pt, err := flags.SinglePropertyType()
			if err != nil {
				return err
			}

			cfg, logger, err := setup(global, "reconcile")
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			batch, err := app.Search.SearchMonth(cmd.Context(), flags.Region, flags.Period, pt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == FormatJSON {
				return writeJSON(out, batch)
			}
			PrintHeader(out, flags.Region, fmt.Sprintf("%s %s", flags.Period, pt))
			if err := PrintMatches(out, batch.Data, format); err != nil {
				return err
			}
			PrintSummary(out, batch.Data, batch.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Region, "region", "", "5-digit municipality code (LAWD_CD)")
	cmd.Flags().StringVar(&flags.Period, "period", "", "Deal month, YYYYMM")
	cmd.Flags().StringSliceVar(&flags.PropertyTypes, "type", nil, "Property type, exactly one (default: commercial)")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newSearchCommand(global *GlobalFlags) *cobra.Command {
	flags := &SearchFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Reconcile a date range across one or more property types",
		Example: `  detective search --region 11680 --start 2024-01-01 --end 2024-03-31 --type commercial,land`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(global.Output)
			if err != nil {
				return err
			}
			req, err := flags.ToSearchRequest()
			if err != nil {
				return err
			}

			cfg, logger, err := setup(global, "search")
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			result, err := app.Search.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == FormatJSON {
				return writeJSON(out, result)
			}
			PrintHeader(out, flags.Region, flags.Start+" ~ "+flags.End)
			if err := PrintMatches(out, result.Data, format); err != nil {
				return err
			}
			PrintSummary(out, result.Data, result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Region, "region", "", "5-digit municipality code (LAWD_CD)")
	cmd.Flags().StringVar(&flags.Start, "start", "", "First deal date, YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.End, "end", "", "Last deal date, YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&flags.PropertyTypes, "type", nil, "Property types (default: commercial)")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newRegionsCommand(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the municipalities known to the region directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(global.Output)
			if err != nil {
				return err
			}
			cfg, logger, err := setup(global, "regions")
			if err != nil {
				return err
			}

			store, err := storage.NewStorage(cfg.Storage.DatabasePath, logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			tree, err := store.RegionTree(cmd.Context())
			if err != nil {
				return err
			}
			return PrintRegions(cmd.OutOrStdout(), tree, format)
		},
	}
}
