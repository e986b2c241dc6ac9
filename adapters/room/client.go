package room

import (
	"github.com/google/uuid"
)

// Client 是一條即時連線，事件先放入有上限的佇列再由連線的寫入 goroutine 送出
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	send   chan Event
}

// Events 回傳待送出的事件，連線斷開後會被關閉
func (c *Client) Events() <-chan Event {
	return c.send
}

// Authenticated 表示連線是否帶有已驗證的使用者
func (c *Client) Authenticated() bool {
	return c.UserID != uuid.Nil
}

// offer 嘗試放入佇列，佇列已滿時丟棄並回傳 false
// 呼叫者必須持有 Manager 的鎖，確保佇列尚未被關閉
func (c *Client) offer(event Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}
