package room

import (
	"encoding/json"
	"time"

	"lotbid/models"
)

// Event 是送給客戶端的訊息，Data 已經序列化成 JSON
// 同一個事件只序列化一次，再複製給房間內所有連線
type Event struct {
	Type string          `json:"type" msgpack:"type"`
	Data json.RawMessage `json:"data" msgpack:"data"`
}

// NewEvent 序列化 payload 並建立事件
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// PublishRequest 表示一個發布請求，包含頻道名稱和訊息。
type PublishRequest struct {
	Channel string `msgpack:"channel"`
	Message Event  `msgpack:"message"`
}

// ParticipantsPayload 是 participant-joined / participant-left 事件的內容
type ParticipantsPayload struct {
	AuctionID    string `json:"auctionId"`
	Participants int    `json:"participants"`
}

// CountdownPayload 是 countdown 事件的內容
type CountdownPayload struct {
	AuctionID   string    `json:"auctionId"`
	EndTime     time.Time `json:"endTime"`
	RemainingMs int64     `json:"remainingMs"`
}

// timing 是從 state / auction-extended 事件中讀出的時間資訊
type timing struct {
	Status  models.Status `json:"status"`
	EndTime *time.Time    `json:"endTime"`
}
