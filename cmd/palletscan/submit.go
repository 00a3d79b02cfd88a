package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"palletscan/cmd/palletscan/ui"
	"palletscan/internal/i18n"
	"palletscan/internal/pallet"
	"palletscan/internal/station"
)

var submitResID int64

// submitCmd submits one pallet barcode without the station
var submitCmd = &cobra.Command{
	Use:   "submit [barcode]",
	Short: "Submit one pallet barcode for a package line",
	Long: `Submit a pallet barcode against a package destination record.

Without a barcode argument one line is read from stdin, which is what a
keyboard-wedge scanner types.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Int64Var(&submitResID, "res-id", 0, "Package destination record id (required)")
	_ = submitCmd.MarkFlagRequired("res-id")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submitResID <= 0 {
		return fmt.Errorf("invalid --res-id: %d", submitResID)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.authenticate(ctx); err != nil {
		return err
	}

	printer := i18n.Printer(a.cfg.UI.Language)
	notifier := &cliNotifier{out: cmd.OutOrStdout(), styles: ui.NewStyles(ui.ThemeFor(a.cfg.UI.Theme))}
	prompter := &linePrompter{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
	line := station.NewPackageLine(submitResID, fmt.Sprintf("#%d", submitResID))
	wf := pallet.NewWorkflow(line, a.client, notifier, prompter, a.workflowOptions(printer)...)

	logger.Info("Submitting pallet", zap.Int64("res_id", submitResID))
	if len(args) == 0 {
		err = wf.TriggerScan(ctx)
	} else {
		_, err = wf.SubmitPallet(ctx, args[0], submitResID)
	}
	if err != nil {
		logger.Debug("Submit failed", zap.String("kind", pallet.Kind(err)), zap.Error(err))
		return err
	}

	if line.DisplayName() != line.Name() {
		fmt.Fprintf(cmd.OutOrStdout(), "package: %s\n", line.DisplayName())
	}
	return nil
}

// cliNotifier prints workflow notifications as styled lines.
type cliNotifier struct {
	out    io.Writer
	styles ui.Styles
}

func (n *cliNotifier) Notify(message string, level pallet.Level) {
	fmt.Fprintln(n.out, n.styles.ForLevel(level).Render(message))
}

// linePrompter reads one barcode line from a reader.
type linePrompter struct {
	in  io.Reader
	out io.Writer
}

func (p *linePrompter) PromptBarcode(ctx context.Context, title, placeholder string) (string, error) {
	fmt.Fprintf(p.out, "%s: %s\n> ", title, placeholder)

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		done <- result{strings.TrimSpace(line), err}
	}()

	select {
	case r := <-done:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
