package handler

import (
	"net/http"
	"strconv"

	"bridge-go/internal/model"
	"bridge-go/internal/service"
	"bridge-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrative API.
type AdminHandler struct {
	adminService       service.AdminService
	appointmentService service.AppointmentService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(adminService service.AdminService, appointmentService service.AppointmentService) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		appointmentService: appointmentService,
	}
}

// ServiceRequest is the body for creating or updating a directory record.
type ServiceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Hours       string   `json:"hours"`
	Website     string   `json:"website"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
}

// CreateService adds a record to the directory.
func (h *AdminHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: name and category are required"})
		return
	}

	record := &model.ServiceRecord{
		Name:        req.Name,
		Category:    req.Category,
		Address:     req.Address,
		Phone:       req.Phone,
		Hours:       req.Hours,
		Website:     req.Website,
		Description: req.Description,
		Languages:   req.Languages,
	}
	if err := h.adminService.CreateService(record); err != nil {
		log.Warnf("CreateService: failed to create '%s', error: %v", req.Name, err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	log.Infof("Service '%s' created", record.Name)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Service created successfully", "data": record})
}

// UpdateService modifies an existing record.
func (h *AdminHandler) UpdateService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: name and category are required"})
		return
	}

	record := &model.ServiceRecord{
		ID:          uint(id),
		Name:        req.Name,
		Category:    req.Category,
		Address:     req.Address,
		Phone:       req.Phone,
		Hours:       req.Hours,
		Website:     req.Website,
		Description: req.Description,
		Languages:   req.Languages,
		Active:      true,
	}
	if err := h.adminService.UpdateService(record); err != nil {
		log.Warnf("UpdateService: failed to update service %d, error: %v", id, err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Service updated successfully", "data": record})
}

// DeleteService removes a record from the directory.
func (h *AdminHandler) DeleteService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	if err := h.adminService.DeleteService(uint(id)); err != nil {
		log.Warnf("DeleteService: failed to delete service %d, error: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Service deleted successfully"})
}

// ListServices returns the directory, optionally filtered by ?category=.
func (h *AdminHandler) ListServices(c *gin.Context) {
	records, err := h.adminService.ListServices(c.Query("category"))
	if err != nil {
		log.Errorf("ListServices: failed to list services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": records})
}

// GetStats returns the dashboard counters.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		log.Errorf("GetStats: failed to collect stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": stats})
}

// ListUsers returns one page of accounts, via ?page= and ?pageSize=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	users, total, err := h.adminService.ListUsers(page, pageSize)
	if err != nil {
		log.Errorf("ListUsers: failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"users": users,
			"total": total,
			"page":  page,
		},
	})
}

// ExportCatalog uploads a catalog snapshot and returns a download URL.
func (h *AdminHandler) ExportCatalog(c *gin.Context) {
	url, err := h.adminService.ExportCatalog(c.Request.Context())
	if err != nil {
		log.Errorf("ExportCatalog: export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"url": url}})
}

// GetSearchLogs returns recent searches and per-provider totals.
func (h *AdminHandler) GetSearchLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.adminService.RecentSearches(limit)
	if err != nil {
		log.Errorf("GetSearchLogs: failed to read search logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read search logs"})
		return
	}

	providers, err := h.adminService.SearchProviderCounts()
	if err != nil {
		log.Errorf("GetSearchLogs: failed to aggregate providers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate providers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"recent":    logs,
			"providers": providers,
		},
	})
}

// UpdateAppointmentStatus lets staff confirm or cancel a booking.
func (h *AdminHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: status is required"})
		return
	}

	if err := h.appointmentService.UpdateStatus(uint(id), req.Status); err != nil {
		log.Warnf("UpdateAppointmentStatus: failed for appointment %d, error: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Appointment status updated"})
}
