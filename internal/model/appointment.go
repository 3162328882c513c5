package model

import "time"

// Appointment statuses.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment corresponds to the 'appointments' table. A resident books a
// visit with a service organization; staff confirm or cancel it.
type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	ServiceID   uint      `gorm:"index;not null" json:"serviceId"`
	ServiceName string    `gorm:"type:varchar(255)" json:"serviceName"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduledAt"`
	Notes       string    `gorm:"type:text" json:"notes"`
	Status      string    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Appointment) TableName() string {
	return "appointments"
}
