package models

// Status 代表拍賣的生命週期狀態
//
//	draft -> scheduled -> live -> ended
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusEnded     Status = "ended"
)

var statusOrder = map[Status]int{
	StatusDraft:     0,
	StatusScheduled: 1,
	StatusLive:      2,
	StatusEnded:     3,
}

// Valid 檢查狀態是否為已知的值
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo 判斷是否可以轉換到下一個狀態
// 只允許往前轉換(可跳過中間狀態)，不允許倒退或原地轉換
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// AcceptsBids 只有 live 狀態接受出價
func (s Status) AcceptsBids() bool {
	return s == StatusLive
}

// PubliclyVisible 草稿不對外公開
func (s Status) PubliclyVisible() bool {
	return s != StatusDraft
}
