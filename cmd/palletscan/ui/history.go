package ui

import (
	"fmt"
	"time"

	"palletscan/internal/pallet"
)

// HistoryTable lays out journaled scans, newest first.
func HistoryTable(records []pallet.Record, styles Styles) *SimpleTable {
	t := NewSimpleTable("Recent pallet scans", []string{"Time", "Line", "Pallet", "Result", "Package", "Took"})
	for _, rec := range records {
		t.AddRow(
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", rec.ContextID),
			rec.PalletBarcode,
			resultCell(rec, styles),
			rec.PackageName,
			rec.Duration.Round(time.Millisecond).String(),
		)
	}
	return t
}

func resultCell(rec pallet.Record, styles Styles) string {
	switch {
	case rec.Stale:
		return styles.Muted.Render("stale")
	case rec.Success:
		return styles.Success.Render("ok")
	case rec.Kind != "":
		return styles.Error.Render(rec.Kind)
	default:
		return styles.Error.Render("failed")
	}
}
