// Package i18n holds the operator-facing strings of the scanning station.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	ScanButton        = "pallet.scan_button"
	PromptTitle       = "pallet.prompt_title"
	PromptPlaceholder = "pallet.prompt_placeholder"
	NoBarcode         = "pallet.no_barcode"
	ScanSucceeded     = "pallet.scan_succeeded"
	ScanFailed        = "pallet.scan_failed"
	UnknownError      = "pallet.unknown_error"
	Updating          = "pallet.updating"
	StationNotReady   = "station.not_ready"
	ScanDisabled      = "station.scan_disabled"
	StationTitle      = "station.title"
	StationHelp       = "station.help"
	NoLines           = "station.no_lines"
)

// Supported returns the languages with a catalog.
func Supported() []language.Tag {
	return []language.Tag{language.English, language.Chinese}
}

// Parse maps a config value ("en", "zh", "zh-CN", ...) to a supported tag.
// Unknown values fall back to English.
func Parse(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return language.English
	}
	matcher := language.NewMatcher(Supported())
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported()[idx]
}

// Printer returns a message printer for the given config language.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Parse(lang))
}
