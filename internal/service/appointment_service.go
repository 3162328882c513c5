package service

import (
	"errors"
	"fmt"
	"time"

	"bridge-go/internal/model"
	"bridge-go/internal/repository"
)

// AppointmentService manages bookings between residents and services.
type AppointmentService interface {
	Create(userID, serviceID uint, scheduledAt time.Time, notes string) (*model.Appointment, error)
	ListByUser(userID uint) ([]model.Appointment, error)
	Cancel(userID, appointmentID uint) error
	UpdateStatus(appointmentID uint, status string) error
}

type appointmentService struct {
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.ServiceRepository
}

// NewAppointmentService creates a new AppointmentService instance.
func NewAppointmentService(appointmentRepo repository.AppointmentRepository, serviceRepo repository.ServiceRepository) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
	}
}

// Create books a new appointment in the pending state.
func (s *appointmentService) Create(userID, serviceID uint, scheduledAt time.Time, notes string) (*model.Appointment, error) {
	if scheduledAt.Before(time.Now()) {
		return nil, errors.New("appointment time must be in the future")
	}

	svc, err := s.serviceRepo.FindByID(serviceID)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}

	appointment := &model.Appointment{
		UserID:      userID,
		ServiceID:   serviceID,
		ServiceName: svc.Name,
		ScheduledAt: scheduledAt,
		Notes:       notes,
		Status:      model.AppointmentStatusPending,
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// ListByUser returns all appointments booked by the given user.
func (s *appointmentService) ListByUser(userID uint) ([]model.Appointment, error) {
	return s.appointmentRepo.FindByUser(userID)
}

// Cancel marks an appointment cancelled. Users may only cancel their own.
func (s *appointmentService) Cancel(userID, appointmentID uint) error {
	appointment, err := s.appointmentRepo.FindByID(appointmentID)
	if err != nil {
		return fmt.Errorf("appointment not found: %w", err)
	}
	if appointment.UserID != userID {
		return errors.New("appointment does not belong to this user")
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil
	}

	appointment.Status = model.AppointmentStatusCancelled
	return s.appointmentRepo.Update(appointment)
}

// UpdateStatus sets the appointment state, used by staff to confirm bookings.
func (s *appointmentService) UpdateStatus(appointmentID uint, status string) error {
	switch status {
	case model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled:
	default:
		return fmt.Errorf("invalid appointment status: %q", status)
	}

	appointment, err := s.appointmentRepo.FindByID(appointmentID)
	if err != nil {
		return fmt.Errorf("appointment not found: %w", err)
	}
	appointment.Status = status
	return s.appointmentRepo.Update(appointment)
}
