package api

import (
	"bytes"
	"encoding/json"
)

var nullPayload = json.RawMessage("null")

// NormalizePayload 接受 {"data": T} 或 T 兩種格式，統一回傳 T
// 只在接收外部資料時使用，內部一律使用 T
func NormalizePayload(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nullPayload
	}
	if trimmed[0] != '{' {
		return trimmed
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return trimmed
	}
	if data, ok := wrapper["data"]; ok && len(wrapper) == 1 {
		if data = bytes.TrimSpace(data); len(data) > 0 {
			return data
		}
		return nullPayload
	}
	return trimmed
}
