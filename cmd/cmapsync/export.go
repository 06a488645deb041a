package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ctrlmap-tools/cmapsync/internal/app"
	"github.com/ctrlmap-tools/cmapsync/internal/config"
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/ctrlmap-tools/cmapsync/internal/utils"
)

// domainFlags maps export selection flags to domains, in export order.
var domainFlags = []struct {
	flag string
	kind domain.Kind
}{
	{"gov", domain.KindGovernance},
	{"pols", domain.KindPolicy},
	{"pros", domain.KindProcedure},
	{"risks", domain.KindRisk},
	{"vendors", domain.KindVendor},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export compliance documents to the output directory",
	Long: `Export mirrors the selected domains into one folder per domain. Files
whose content is unchanged are left alone; files that differ from their
local copy are reported as conflicts unless --force is set.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("all", false, "Export every domain")
	for _, df := range domainFlags {
		exportCmd.Flags().Bool(df.flag, false, "Export "+string(df.kind)+" documents")
	}
	exportCmd.Flags().Bool("force", false, "Overwrite locally modified files")
	exportCmd.Flags().Bool("keep-raw-json", false, "Also write JSON and YAML renditions")
	exportCmd.Flags().StringP("output", "o", "", "Output directory (default from config)")

	_ = viper.BindPFlag("output.force", exportCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("output.keep_raw_json", exportCmd.Flags().Lookup("keep-raw-json"))
}

func selectedKinds(cmd *cobra.Command) ([]domain.Kind, error) {
	if all, _ := cmd.Flags().GetBool("all"); all {
		return domain.AllKinds, nil
	}
	var kinds []domain.Kind
	for _, df := range domainFlags {
		if set, _ := cmd.Flags().GetBool(df.flag); set {
			kinds = append(kinds, df.kind)
		}
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no domains selected; pass --all or one of --gov, --pols, --pros, --risks, --vendors")
	}
	return kinds, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	kinds, err := selectedKinds(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Directory, _ = cmd.Flags().GetString("output")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  cfg.Logging.Format,
		Verbose: verbose,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:       cfg,
		Logger:       logger,
		ShowProgress: term.IsTerminal(int(os.Stderr.Fd())) && !verbose,
	})
	if err != nil {
		return err
	}
	defer orch.Close()

	summary, runErr := orch.Run(ctx, kinds)
	printSummary(summary)

	if runErr != nil {
		return fmt.Errorf("%s", domain.UserMessage(runErr))
	}
	if summary.Failed() {
		return fmt.Errorf("one or more domains failed to export")
	}
	return nil
}

func printSummary(summary *app.RunSummary) {
	for _, o := range summary.Outcomes {
		if o.Err != nil {
			fmt.Printf("%-12s %s\n", o.Kind+":", domain.UserMessage(o.Err))
			continue
		}
		fmt.Printf("%-12s %d created, %d overwritten, %d unchanged\n",
			o.Kind+":", o.Report.Created, o.Report.Overwritten, o.Report.Unchanged)
		for _, skipped := range o.Skipped {
			fmt.Printf("  skipped %s: %s\n", skipped.ID, skipped.Reason)
		}
	}

	if conflicts := summary.Conflicts(); len(conflicts) > 0 {
		fmt.Println("\nLocally modified files left untouched:")
		for _, path := range conflicts {
			fmt.Println("  " + path)
		}
		fmt.Println("Re-run with --force to overwrite them.")
	}
}
