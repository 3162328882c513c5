package handler

import (
	"net/http"
	"strconv"
	"time"

	"bridge-go/internal/model"
	"bridge-go/internal/service"
	"bridge-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler serves booking requests for authenticated residents.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler instance.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load user from context"})
		return nil, false
	}
	user, ok := value.(*model.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected user type in context"})
		return nil, false
	}
	return user, true
}

// CreateAppointmentRequest is the body for booking an appointment.
type CreateAppointmentRequest struct {
	ServiceID   uint      `json:"serviceId" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Notes       string    `json:"notes"`
}

// Create books an appointment for the current user.
func (h *AppointmentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: serviceId and scheduledAt are required"})
		return
	}

	appointment, err := h.appointmentService.Create(user.ID, req.ServiceID, req.ScheduledAt, req.Notes)
	if err != nil {
		log.Warnf("CreateAppointment: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Appointment created", "data": appointment})
}

// List returns the current user's appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	appointments, err := h.appointmentService.ListByUser(user.ID)
	if err != nil {
		log.Errorf("ListAppointments: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": appointments})
}

// Cancel cancels one of the current user's appointments.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	if err := h.appointmentService.Cancel(user.ID, uint(id)); err != nil {
		log.Warnf("CancelAppointment: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Appointment cancelled"})
}
