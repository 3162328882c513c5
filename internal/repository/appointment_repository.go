package repository

import (
	"bridge-go/internal/model"

	"gorm.io/gorm"
)

// AppointmentRepository defines the persistence operations for appointments.
type AppointmentRepository interface {
	Create(appointment *model.Appointment) error
	FindByID(id uint) (*model.Appointment, error)
	FindByUser(userID uint) ([]model.Appointment, error)
	Update(appointment *model.Appointment) error
	Delete(id uint) error
	Count() (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new AppointmentRepository instance.
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(appointment *model.Appointment) error {
	return r.db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(id uint) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.First(&appointment, id).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// FindByUser retrieves a user's appointments, soonest first.
func (r *appointmentRepository) FindByUser(userID uint) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.Where("user_id = ?", userID).Order("scheduled_at").Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) Update(appointment *model.Appointment) error {
	return r.db.Save(appointment).Error
}

func (r *appointmentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Appointment{}, id).Error
}

func (r *appointmentRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.Appointment{}).Count(&total).Error
	return total, err
}
