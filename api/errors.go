package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"lotbid/api/openapi"
	"lotbid/auction"
)

// respondError 將領域錯誤轉成 HTTP 回應，未分類的錯誤只回覆通用訊息
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
	}
	c.AbortWithStatusJSON(status, errorBody(message))
}

func classify(err error) (int, string) {
	var validationErr *auction.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Error()
	}
	if rejection, ok := auction.AsRejection(err); ok {
		return statusOf(rejection.Unwrap()), rejection.Message
	}
	switch {
	case errors.Is(err, auction.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, auction.ErrNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auction.ErrPreconditionFailed):
		return http.StatusConflict, "operation not allowed in the current state"
	case errors.Is(err, auction.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auction.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal server error"
}

func statusOf(category error) int {
	switch {
	case errors.Is(category, auction.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(category, auction.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusConflict
	}
}

// handleRequestError 回應無法解析的路徑、查詢或 header 參數
func (impl *ServerImpl) handleRequestError(c *gin.Context, err error, status int) {
	impl.logger.Debug("Invalid request parameter", slog.String("path", c.FullPath()), slog.Any("error", err))
	c.AbortWithStatusJSON(status, openapi.ErrorResponse{Success: false, Message: err.Error()})
}

// respondPendingError 補上 strict handler 只設定狀態碼而沒有寫出內容的回應
// 包含無法解析的 request body 以及 handler 回傳的未分類錯誤
func (impl *ServerImpl) respondPendingError(c *gin.Context) {
	c.Next()
	if c.Writer.Written() || len(c.Errors) == 0 {
		return
	}
	status := c.Writer.Status()
	message := "invalid request body"
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		impl.logger.Error("Request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", c.Errors.Last().Err))
		status = http.StatusInternalServerError
		message = "internal server error"
	}
	c.JSON(status, openapi.ErrorResponse{Success: false, Message: message})
}
