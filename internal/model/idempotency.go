package model

import "time"

// IdempotencyKey 记录带 Idempotency-Key 头的写请求及其响应
type IdempotencyKey struct {
	Key         string    `gorm:"primaryKey;type:varchar(128)" json:"key"`
	RequestHash string    `gorm:"type:varchar(64);not null" json:"request_hash"`
	Method      string    `gorm:"type:varchar(8)" json:"method"`
	Path        string    `gorm:"type:varchar(255)" json:"path"`
	Status      int       `json:"status"`
	Response    string    `gorm:"type:text" json:"response"`
	CreatedAt   time.Time `json:"created_at"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}
