package model

import "time"

// SearchLog corresponds to the 'search_logs' table. Rows are written by the
// Kafka consumer, not by the request path.
type SearchLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Query       string    `gorm:"type:varchar(500)" json:"query"`
	Category    string    `gorm:"type:varchar(50)" json:"category"`
	Provider    string    `gorm:"type:varchar(20);index" json:"provider"`
	ResultCount int       `json:"resultCount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (SearchLog) TableName() string {
	return "search_logs"
}
