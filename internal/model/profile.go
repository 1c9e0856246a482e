package model

import "time"

// DefaultTrustScore 承包商初始信用分
const DefaultTrustScore = 80

// ContractorProfile 信用分投影, 由放款事件异步更新
type ContractorProfile struct {
	CustomerID         uint64    `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	TrustScore         int       `gorm:"not null;default:80" json:"trust_score"`
	MilestonesReleased int       `gorm:"not null;default:0" json:"milestones_released"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (ContractorProfile) TableName() string {
	return "contractor_profiles"
}

// ProcessedEvent 消费端幂等表 (MQ 至少投递一次)
type ProcessedEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(64)" json:"event_id"`
	Topic       string    `gorm:"type:varchar(255);not null" json:"topic"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
