package pallet

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// updateReply decodes the update route's result. Controllers in the field
// answer with either {"success": bool} or {"status": "success"|...}, and
// unset char fields come back as false.
type updateReply struct {
	Success     json.RawMessage `json:"success"`
	Status      json.RawMessage `json:"status"`
	Message     json.RawMessage `json:"message"`
	PackageName json.RawMessage `json:"package_name"`
	PackageID   json.RawMessage `json:"package_id"`
}

func (r *updateReply) succeeded() bool {
	if b, ok := rawBool(r.Success); ok {
		return b
	}
	if b, ok := rawBool(r.Status); ok {
		return b
	}
	return rawString(r.Status) == "success"
}

func (r *updateReply) result() ScanResult {
	return ScanResult{
		Success:     r.succeeded(),
		Message:     rawString(r.Message),
		PackageName: rawString(r.PackageName),
		PackageID:   rawInt(r.PackageID),
	}
}

func rawBool(raw json.RawMessage) (bool, bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func rawInt(raw json.RawMessage) int64 {
	trimmed := string(bytes.TrimSpace(raw))
	if trimmed == "" {
		return 0
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
