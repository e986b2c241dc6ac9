package redis

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// PayloadField 是 stream 訊息中存放序列化內容的欄位
const PayloadField = "payload"

var (
	ErrProducerClosed = errors.New("producer is closed")
	ErrMissingPayload = errors.New("payload field not found or invalid type")
)

// EncodeMessage 以 msgpack 序列化後放入 stream 訊息的 payload 欄位
// redis 的值是 binary safe，不需要再做文字編碼
func EncodeMessage[T any](data T) (map[string]any, error) {
	bytes, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}
	return map[string]any{PayloadField: bytes}, nil
}

// DecodeMessage 從 stream 訊息的 payload 欄位還原資料
func DecodeMessage[T any](values map[string]any) (T, error) {
	var result T

	var raw []byte
	switch v := values[PayloadField].(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return result, ErrMissingPayload
	}

	if err := msgpack.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	return result, nil
}
