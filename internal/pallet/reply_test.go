package pallet

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestUpdateReplyResult(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ScanResult
	}{
		{"success flag", `{"success": true, "package_name": "PACK-99", "package_id": 99}`,
			ScanResult{Success: true, PackageName: "PACK-99", PackageID: 99}},
		{"status string", `{"status": "success", "message": "ok"}`,
			ScanResult{Success: true, Message: "ok"}},
		{"status error", `{"status": "error", "message": "bad"}`,
			ScanResult{Message: "bad"}},
		{"status bool", `{"status": true}`,
			ScanResult{Success: true}},
		{"success wins over status", `{"success": false, "status": "success"}`,
			ScanResult{}},
		{"odoo false char fields", `{"success": true, "package_name": false, "message": false, "package_id": false}`,
			ScanResult{Success: true}},
		{"empty object", `{}`, ScanResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r updateReply
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			if diff := cmp.Diff(tt.want, r.result()); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanRequestParams(t *testing.T) {
	req := ScanRequest{Token: "t", PalletBarcode: "PAL-1", ContextID: 5}
	want := map[string]interface{}{"pallet_barcode": "PAL-1", "res_id": int64(5)}
	if diff := cmp.Diff(want, req.Params()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}
