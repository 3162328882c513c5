// Package model defines the Go structs mapped to database tables.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Service categories. Every record carries exactly one of these.
const (
	CategoryHousing      = "housing"
	CategoryHealthcare   = "healthcare"
	CategoryLegal        = "legal"
	CategoryEmployment   = "employment"
	CategoryEducation    = "education"
	CategoryFood         = "food"
	CategoryLanguage     = "language"
	CategoryMentalHealth = "mental health"
	CategoryChildcare    = "childcare"
)

// Categories lists all valid service categories.
var Categories = []string{
	CategoryHousing,
	CategoryHealthcare,
	CategoryLegal,
	CategoryEmployment,
	CategoryEducation,
	CategoryFood,
	CategoryLanguage,
	CategoryMentalHealth,
	CategoryChildcare,
}

// IsValidCategory reports whether c is one of the known categories.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// StringList stores a list of tags as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// ServiceRecord corresponds to the 'services' table. It is the directory's
// core entity: one community organization and how to reach it.
type ServiceRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the join key between ranked names and full records, so it must be
	// unique within the active set. The admin service rejects duplicates before
	// the index does.
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Category    string     `gorm:"type:varchar(50);index;not null" json:"category"`
	Address     string     `gorm:"type:varchar(255)" json:"address"`
	Phone       string     `gorm:"type:varchar(50)" json:"phone"`
	Hours       string     `gorm:"type:varchar(100)" json:"hours"`
	Website     string     `gorm:"type:varchar(255)" json:"website"`
	Description string     `gorm:"type:text" json:"description"`
	Languages   StringList `gorm:"type:json" json:"languages"`
	Active      bool       `gorm:"default:true" json:"active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table for this model.
func (ServiceRecord) TableName() string {
	return "services"
}
