// Package repository defines the data-access interfaces and their implementations.
package repository

import (
	"bridge-go/internal/model"

	"gorm.io/gorm"
)

// ServiceRepository is the candidate source for the ranking proxy, plus the
// write operations used by the admin surface. The proxy only ever reads.
type ServiceRepository interface {
	Create(record *model.ServiceRecord) error
	FindByID(id uint) (*model.ServiceRecord, error)
	FindByName(name string) (*model.ServiceRecord, error)
	FindAll() ([]model.ServiceRecord, error)
	FindByCategory(category string) ([]model.ServiceRecord, error)
	Update(record *model.ServiceRecord) error
	Delete(id uint) error
	Count() (int64, error)
}

// serviceRepository is the GORM implementation of ServiceRepository.
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new ServiceRepository instance.
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// Create inserts a new service record.
func (r *serviceRepository) Create(record *model.ServiceRecord) error {
	return r.db.Create(record).Error
}

// FindByID looks up a service record by its primary key.
func (r *serviceRepository) FindByID(id uint) (*model.ServiceRecord, error) {
	var record model.ServiceRecord
	err := r.db.First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByName looks up a service record by its display name.
func (r *serviceRepository) FindByName(name string) (*model.ServiceRecord, error) {
	var record model.ServiceRecord
	err := r.db.Where("name = ?", name).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll retrieves every active service record, ordered by primary key so
// the fallback matcher sees a stable candidate order.
func (r *serviceRepository) FindAll() ([]model.ServiceRecord, error) {
	var records []model.ServiceRecord
	err := r.db.Where("active = ?", true).Order("id").Find(&records).Error
	return records, err
}

// FindByCategory retrieves active service records with an exact category match.
func (r *serviceRepository) FindByCategory(category string) ([]model.ServiceRecord, error) {
	var records []model.ServiceRecord
	err := r.db.Where("active = ? AND category = ?", true, category).Order("id").Find(&records).Error
	return records, err
}

// Update saves changes to an existing service record.
func (r *serviceRepository) Update(record *model.ServiceRecord) error {
	return r.db.Save(record).Error
}

// Delete removes a service record by its primary key.
func (r *serviceRepository) Delete(id uint) error {
	return r.db.Delete(&model.ServiceRecord{}, id).Error
}

// Count returns the total number of service records.
func (r *serviceRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.ServiceRecord{}).Count(&total).Error
	return total, err
}
