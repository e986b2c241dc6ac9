package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle 代表市集中的車輛資料
// 建立拍賣時會從這裡複製車輛資訊，拍賣本身不會再關聯回來
type Vehicle struct {
	ID      uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Make    string                      `gorm:"type:varchar(128);not null"`
	Model   string                      `gorm:"type:varchar(128);not null"`
	Year    int                         `gorm:"not null"`
	Mileage int                         `gorm:"not null;default:0"`
	Engine  string                      `gorm:"type:varchar(128)"`
	Images  datatypes.JSONSlice[string] `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		v.ID = id
	}
	return nil
}

// FirstImage 回傳第一張圖片，沒有圖片時回傳空字串
func (v *Vehicle) FirstImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}
