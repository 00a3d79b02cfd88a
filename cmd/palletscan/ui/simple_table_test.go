package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"palletscan/internal/pallet"
)

func TestSimpleTable_Empty(t *testing.T) {
	table := NewSimpleTable("T", []string{"A"})
	assert.Equal(t, "", table.View(NewStyles(LightTheme())))
}

func TestSimpleTable_Render(t *testing.T) {
	table := NewSimpleTable("Scans", []string{"Pallet", "Result"})
	table.AddRow("PAL-001", "ok")
	table.AddRow("PAL-002")

	out := table.View(NewStyles(LightTheme()))
	assert.Contains(t, out, "Scans")
	assert.Contains(t, out, "Pallet")
	assert.Contains(t, out, "PAL-001")
	assert.Contains(t, out, "PAL-002")
	assert.Contains(t, out, strings.Repeat("-", 10))
}

func TestHistoryTable(t *testing.T) {
	styles := NewStyles(LightTheme())
	recs := []pallet.Record{
		{PalletBarcode: "PAL-1", ContextID: 42, Success: true, PackageName: "PACK-99", StartedAt: time.Now(), Duration: 1500 * time.Microsecond},
		{PalletBarcode: "PAL-2", ContextID: 42, Kind: pallet.KindTransport, StartedAt: time.Now()},
		{PalletBarcode: "PAL-3", ContextID: 7, Stale: true, StartedAt: time.Now()},
	}

	table := HistoryTable(recs, styles)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, "42", table.Rows[0][1])
	assert.Equal(t, "2ms", table.Rows[0][5])

	out := table.View(styles)
	assert.Contains(t, out, "PACK-99")
	assert.Contains(t, out, "transport_error")
	assert.Contains(t, out, "stale")
}

func TestThemeFor(t *testing.T) {
	assert.True(t, ThemeFor("dark").IsDark)
	assert.False(t, ThemeFor("light").IsDark)
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, ThemeFor("auto").IsDark)
}
