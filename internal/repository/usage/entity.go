package usage

import (
	"time"
)

// Record is one completed AI request as persisted for usage reporting.
type Record struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Adapter    string    `gorm:"index;size:64" json:"adapter"`
	Category   string    `gorm:"size:32" json:"category"`
	TokensUsed int       `json:"tokensUsed"`
	LatencyMs  int64     `json:"latencyMs"`
	Cost       float64   `json:"cost"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Record) TableName() string { return "usage_records" }

// AdapterSummary aggregates usage per adapter.
type AdapterSummary struct {
	Adapter      string  `json:"adapter"`
	Requests     int64   `json:"requests"`
	TotalTokens  int64   `json:"totalTokens"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	TotalCost    float64 `json:"totalCost"`
}
