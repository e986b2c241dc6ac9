package auction

import (
	"errors"
	"fmt"
)

// 錯誤分類，傳輸層(HTTP / WebSocket)只依照這些分類決定回應方式
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError 表示輸入格式或範圍錯誤，Field 為第一個違反的欄位
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RejectReason 是出價被拒絕的原因代碼，會原樣送給客戶端
type RejectReason string

const (
	ReasonAuctionNotLive RejectReason = "AUCTION_NOT_LIVE"
	ReasonInvalidAmount  RejectReason = "INVALID_AMOUNT"
	ReasonBidTooLow      RejectReason = "BID_TOO_LOW"
	ReasonUnauthorized   RejectReason = "UNAUTHORIZED"
)

// BidRejection 表示出價沒有通過檢查，出價不會被寫入
type BidRejection struct {
	Reason  RejectReason
	Message string
}

func (r *BidRejection) Error() string {
	return fmt.Sprintf("bid rejected (%s): %s", r.Reason, r.Message)
}

// Unwrap 讓出價拒絕也能對應到一般的錯誤分類
func (r *BidRejection) Unwrap() error {
	switch r.Reason {
	case ReasonInvalidAmount:
		return ErrValidation
	case ReasonUnauthorized:
		return ErrUnauthorized
	default:
		return ErrPreconditionFailed
	}
}

func reject(reason RejectReason, format string, args ...any) *BidRejection {
	return &BidRejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsRejection 取出錯誤鏈中的 BidRejection
func AsRejection(err error) (*BidRejection, bool) {
	var rejection *BidRejection
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}
