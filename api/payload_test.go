package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "bare object", raw: `{"auctionId":"a","settled":true}`, expected: `{"auctionId":"a","settled":true}`},
		{name: "wrapped object", raw: `{"data":{"auctionId":"a"}}`, expected: `{"auctionId":"a"}`},
		{name: "only one level is removed", raw: `{"data":{"data":1}}`, expected: `{"data":1}`},
		{name: "data next to other keys is kept", raw: `{"data":1,"event":"x"}`, expected: `{"data":1,"event":"x"}`},
		{name: "wrapped null", raw: `{"data":null}`, expected: `null`},
		{name: "array", raw: ` [1,2] `, expected: `[1,2]`},
		{name: "empty", raw: ``, expected: `null`},
		{name: "invalid json is passed through", raw: `{oops`, expected: `{oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(NormalizePayload(json.RawMessage(tt.raw))))
		})
	}
}
