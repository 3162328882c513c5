package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bridge-go/internal/config"
	"bridge-go/internal/model"
	"bridge-go/internal/repository"
	"bridge-go/pkg/log"
	"bridge-go/pkg/storage"

	"gorm.io/gorm"
)

// DashboardStats aggregates the counts shown on the admin dashboard.
type DashboardStats struct {
	Services      int64 `json:"services"`
	Users         int64 `json:"users"`
	Appointments  int64 `json:"appointments"`
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
}

// AdminService defines the administrative operations over the directory.
type AdminService interface {
	CreateService(record *model.ServiceRecord) error
	UpdateService(record *model.ServiceRecord) error
	DeleteService(id uint) error
	ListServices(category string) ([]model.ServiceRecord, error)
	GetStats() (*DashboardStats, error)
	ListUsers(page, pageSize int) ([]model.User, int64, error)
	ExportCatalog(ctx context.Context) (string, error)
	RecentSearches(limit int) ([]model.SearchLog, error)
	SearchProviderCounts() (map[string]int64, error)
}

type adminService struct {
	serviceRepo     repository.ServiceRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	messageRepo     repository.MessageRepository
	searchLogRepo   repository.SearchLogRepository
	minioCfg        config.MinIOConfig
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	messageRepo repository.MessageRepository,
	searchLogRepo repository.SearchLogRepository,
	minioCfg config.MinIOConfig,
) AdminService {
	return &adminService{
		serviceRepo:     serviceRepo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		messageRepo:     messageRepo,
		searchLogRepo:   searchLogRepo,
		minioCfg:        minioCfg,
	}
}

// CreateService validates and inserts a new directory record. Names must be
// unique: the ranking step joins ranked names back to records by exact string
// equality, so a duplicate would silently attach the wrong record.
func (s *adminService) CreateService(record *model.ServiceRecord) error {
	if record.Name == "" {
		return errors.New("service name is required")
	}
	if !model.IsValidCategory(record.Category) {
		return fmt.Errorf("unknown category: %q", record.Category)
	}

	_, err := s.serviceRepo.FindByName(record.Name)
	if err == nil {
		return fmt.Errorf("a service named %q already exists", record.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record.Active = true
	return s.serviceRepo.Create(record)
}

// UpdateService validates and saves changes to an existing record, keeping
// the name-uniqueness invariant on rename.
func (s *adminService) UpdateService(record *model.ServiceRecord) error {
	if !model.IsValidCategory(record.Category) {
		return fmt.Errorf("unknown category: %q", record.Category)
	}

	existing, err := s.serviceRepo.FindByID(record.ID)
	if err != nil {
		return fmt.Errorf("service not found: %w", err)
	}

	if record.Name != existing.Name {
		if _, err := s.serviceRepo.FindByName(record.Name); err == nil {
			return fmt.Errorf("a service named %q already exists", record.Name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return s.serviceRepo.Update(record)
}

// DeleteService removes a record from the directory.
func (s *adminService) DeleteService(id uint) error {
	if _, err := s.serviceRepo.FindByID(id); err != nil {
		return fmt.Errorf("service not found: %w", err)
	}
	return s.serviceRepo.Delete(id)
}

// ListServices returns the directory, optionally filtered by category.
func (s *adminService) ListServices(category string) ([]model.ServiceRecord, error) {
	if category != "" && category != "all" {
		return s.serviceRepo.FindByCategory(category)
	}
	return s.serviceRepo.FindAll()
}

// GetStats collects the dashboard counters.
func (s *adminService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.Services, err = s.serviceRepo.Count(); err != nil {
		return nil, err
	}
	if stats.Users, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.Appointments, err = s.appointmentRepo.Count(); err != nil {
		return nil, err
	}
	if stats.Conversations, err = s.messageRepo.CountConversations(); err != nil {
		return nil, err
	}
	if stats.Messages, err = s.messageRepo.CountMessages(); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListUsers returns one page of accounts.
func (s *adminService) ListUsers(page, pageSize int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.userRepo.FindWithPagination((page-1)*pageSize, pageSize)
}

// ExportCatalog uploads a JSON snapshot of the directory to object storage
// and returns a presigned download URL.
func (s *adminService) ExportCatalog(ctx context.Context) (string, error) {
	records, err := s.serviceRepo.FindAll()
	if err != nil {
		return "", fmt.Errorf("failed to read catalog: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}

	objectName := fmt.Sprintf("catalog-%s.json", time.Now().Format("20060102-150405"))
	if err := storage.PutJSONObject(ctx, s.minioCfg.BucketName, objectName, data); err != nil {
		return "", fmt.Errorf("failed to upload catalog snapshot: %w", err)
	}
	log.Infof("[AdminService] exported catalog snapshot %s (%d records)", objectName, len(records))

	return storage.GetPresignedURL(s.minioCfg.BucketName, objectName, 24*time.Hour)
}

// RecentSearches returns the latest analytics rows.
func (s *adminService) RecentSearches(limit int) ([]model.SearchLog, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return s.searchLogRepo.FindRecent(limit)
}

// SearchProviderCounts aggregates how often each search path served results.
func (s *adminService) SearchProviderCounts() (map[string]int64, error) {
	return s.searchLogRepo.CountByProvider()
}
