package auction

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotbid/models"
)

// ListingInput 是建立拍賣的輸入
// 提供 VehicleID 時會從車輛資料複製 make/model/year/mileage/engine/第一張圖片，
// 否則必須直接提供 make/model/year
type ListingInput struct {
	Title       string          `json:"title" validate:"required,max=255"`
	StartingBid decimal.Decimal `json:"startingBid" validate:"gte=0"`
	Description string          `json:"description"`
	VehicleID   *uuid.UUID      `json:"vehicleId"`
	Make        string          `json:"make" validate:"max=128"`
	Model       string          `json:"model" validate:"max=128"`
	Year        int             `json:"year" validate:"omitempty,gte=1900"`
	Mileage     int             `json:"mileage" validate:"gte=0"`
	Engine      string          `json:"engine" validate:"max=128"`
	Image       string          `json:"image" validate:"omitempty,url"`
	Status      models.Status   `json:"status"`
	StartTime   *time.Time      `json:"startTime"`
	EndTime     *time.Time      `json:"endTime"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			return d.InexactFloat64()
		}, decimal.Decimal{})
	})
	return validate
}

// Normalize 去除字串前後空白，並補上預設狀態
func (in *ListingInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	in.Engine = strings.TrimSpace(in.Engine)
	in.Image = strings.TrimSpace(in.Image)
	if in.Status == "" {
		in.Status = models.StatusDraft
	}
}

// Validate 檢查輸入，只回報第一個違反的條件
// 車輛是否存在由 Store 在建立時檢查
func (in ListingInput) Validate() error {
	err := getValidator().Struct(in)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldMessage(fieldErrs[0])
	}
	if err != nil {
		return NewValidationError("", err.Error())
	}
	if in.VehicleID == nil {
		switch {
		case in.Make == "":
			return NewValidationError("make", "make is required when vehicleId is not provided")
		case in.Model == "":
			return NewValidationError("model", "model is required when vehicleId is not provided")
		case in.Year == 0:
			return NewValidationError("year", "year is required when vehicleId is not provided")
		}
	}
	if in.Status != models.StatusDraft && in.Status != models.StatusScheduled {
		return NewValidationError("status", "a new listing must start as draft or scheduled")
	}
	if in.StartTime != nil && in.EndTime != nil && !in.EndTime.After(*in.StartTime) {
		return NewValidationError("endTime", "endTime must be after startTime")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return NewValidationError(field, fmt.Sprintf("%s is required", field))
	case "gte":
		return NewValidationError(field, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
	case "max":
		return NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "url":
		return NewValidationError(field, fmt.Sprintf("%s must be a valid URL", field))
	default:
		return NewValidationError(field, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
	}
}
