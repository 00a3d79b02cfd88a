package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, ScanButton, "Scan Pallet")
	message.SetString(lang, PromptTitle, "Pallet Scan")
	message.SetString(lang, PromptPlaceholder, "Please scan the pallet barcode")
	message.SetString(lang, NoBarcode, "No barcode detected.")
	message.SetString(lang, ScanSucceeded, "Pallet barcode scanned successfully.")
	message.SetString(lang, ScanFailed, "Pallet scan failed: %s")
	message.SetString(lang, UnknownError, "Unknown error")
	message.SetString(lang, Updating, "Updating pallet...")

	message.SetString(lang, StationTitle, "Pallet scanning station")
	message.SetString(lang, StationNotReady, "Scanning station is not ready yet.")
	message.SetString(lang, ScanDisabled, "Pallet scanning is disabled for this line.")
	message.SetString(lang, StationHelp, "↑/↓ select line • s scan pallet • ? help • q quit")
	message.SetString(lang, NoLines, "No package lines. Pass --line ID=NAME or add lines to the config.")
}
