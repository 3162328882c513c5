package service

import (
	"testing"
	"time"

	"bridge-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAppointmentRepo stores appointments in memory.
type fakeAppointmentRepo struct {
	appointments []model.Appointment
	nextID       uint
}

func (f *fakeAppointmentRepo) Create(a *model.Appointment) error {
	f.nextID++
	a.ID = f.nextID
	f.appointments = append(f.appointments, *a)
	return nil
}

func (f *fakeAppointmentRepo) FindByID(id uint) (*model.Appointment, error) {
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			a := f.appointments[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAppointmentRepo) FindByUser(userID uint) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range f.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Update(a *model.Appointment) error {
	for i := range f.appointments {
		if f.appointments[i].ID == a.ID {
			f.appointments[i] = *a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAppointmentRepo) Delete(id uint) error { return nil }
func (f *fakeAppointmentRepo) Count() (int64, error) {
	return int64(len(f.appointments)), nil
}

func TestAppointmentCreate(t *testing.T) {
	serviceRepo := &fakeServiceRepo{records: testCatalog()}
	appointmentRepo := &fakeAppointmentRepo{}
	svc := NewAppointmentService(appointmentRepo, serviceRepo)

	scheduledAt := time.Now().Add(48 * time.Hour)
	appointment, err := svc.Create(7, 4, scheduledAt, "needs an interpreter")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, "The Legal Aid Society", appointment.ServiceName)
	assert.Equal(t, uint(7), appointment.UserID)
}

func TestAppointmentCreate_PastTimeRejected(t *testing.T) {
	svc := NewAppointmentService(&fakeAppointmentRepo{}, &fakeServiceRepo{records: testCatalog()})

	_, err := svc.Create(7, 4, time.Now().Add(-time.Hour), "")
	assert.Error(t, err)
}

func TestAppointmentCreate_UnknownServiceRejected(t *testing.T) {
	svc := NewAppointmentService(&fakeAppointmentRepo{}, &fakeServiceRepo{records: testCatalog()})

	_, err := svc.Create(7, 999, time.Now().Add(time.Hour), "")
	assert.Error(t, err)
}

func TestAppointmentCancel(t *testing.T) {
	serviceRepo := &fakeServiceRepo{records: testCatalog()}
	appointmentRepo := &fakeAppointmentRepo{}
	svc := NewAppointmentService(appointmentRepo, serviceRepo)

	appointment, err := svc.Create(7, 4, time.Now().Add(time.Hour), "")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(7, appointment.ID))

	updated, err := appointmentRepo.FindByID(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
}

func TestAppointmentCancel_OtherUserRejected(t *testing.T) {
	serviceRepo := &fakeServiceRepo{records: testCatalog()}
	appointmentRepo := &fakeAppointmentRepo{}
	svc := NewAppointmentService(appointmentRepo, serviceRepo)

	appointment, err := svc.Create(7, 4, time.Now().Add(time.Hour), "")
	require.NoError(t, err)

	err = svc.Cancel(8, appointment.ID)
	assert.Error(t, err)
}

func TestAppointmentUpdateStatus_InvalidStatusRejected(t *testing.T) {
	serviceRepo := &fakeServiceRepo{records: testCatalog()}
	appointmentRepo := &fakeAppointmentRepo{}
	svc := NewAppointmentService(appointmentRepo, serviceRepo)

	appointment, err := svc.Create(7, 4, time.Now().Add(time.Hour), "")
	require.NoError(t, err)

	assert.Error(t, svc.UpdateStatus(appointment.ID, "rescheduled"))
	assert.NoError(t, svc.UpdateStatus(appointment.ID, model.AppointmentStatusConfirmed))
}
