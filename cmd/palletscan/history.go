package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"palletscan/cmd/palletscan/ui"
	"palletscan/internal/journal"
)

var historyLimit int

// historyCmd prints the scan journal
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pallet scans from the journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of scans to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Scan journal is disabled (journal.enabled: false).")
		return nil
	}

	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
		return nil
	}

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	fmt.Fprint(cmd.OutOrStdout(), ui.HistoryTable(records, styles).View(styles))
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d scans: %d ok, %d failed, %d stale\n",
		stats.Total, stats.Succeeded, stats.Failed, stats.Stale)
	return nil
}
