package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"palletscan/cmd/palletscan/ui"
	"palletscan/internal/i18n"
	"palletscan/internal/logging"
	"palletscan/internal/pallet"
	"palletscan/internal/station"
)

// runStation opens the interactive scanning station.
func runStation(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := buildStation(a)
	if err != nil {
		return err
	}

	printer := i18n.Printer(a.cfg.UI.Language)
	bridge := ui.NewBridge()
	defer bridge.Close()
	bridge.WatchStation(st)

	handler := pallet.NewHandler(func(line pallet.Line) *pallet.Workflow {
		return pallet.NewWorkflow(line, a.client, bridge, bridge, a.workflowOptions(printer)...)
	})
	handler.OnWorkflow(bridge.Watch)

	// The pallet handler replaces the default put-in-pack action once the
	// station has its lines and session.
	go func() {
		if err := st.WhenReady(ctx, func() { st.Register(handler) }); err != nil {
			logging.Boot("station never became ready: %v", err)
		}
	}()
	go func() {
		if err := prepareStation(ctx, a, st); err != nil {
			bridge.Notify(err.Error(), pallet.LevelDanger)
		}
	}()

	model := ui.NewModel(ui.Options{
		Station: st,
		Bridge:  bridge,
		Printer: printer,
		Styles:  ui.NewStyles(ui.ThemeFor(a.cfg.UI.Theme)),
		Context: ctx,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("station ui failed: %w", err)
	}
	return nil
}

// buildStation creates the station with the configured lines.
func buildStation(a *app) (*station.Station, error) {
	st := station.New()
	for _, l := range a.cfg.Lines {
		if _, err := st.AddLine(l.ResID, l.Name); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// prepareStation authenticates, loads the per-line feature flags and marks
// the station ready. The station is marked ready even when a step fails so
// the operator can still scan; the first error is returned.
func prepareStation(ctx context.Context, a *app, st *station.Station) error {
	defer st.MarkReady()

	if err := a.authenticate(ctx); err != nil {
		logging.Get(logging.CategoryBoot).Error("%v", err)
		return err
	}
	if !a.cfg.Scan.CheckEnabled {
		return nil
	}
	if err := st.LoadFeatureFlags(ctx, a.client); err != nil {
		logging.Get(logging.CategoryBoot).Warn("feature flags incomplete: %v", err)
		return fmt.Errorf("could not check pallet scanning for every line: %w", err)
	}
	return nil
}
