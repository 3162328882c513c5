package service

import (
	"testing"

	"bridge-go/internal/config"
	"bridge-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(repo *fakeServiceRepo) AdminService {
	return NewAdminService(repo, nil, nil, nil, nil, config.MinIOConfig{})
}

func TestCreateService(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.CreateService(&model.ServiceRecord{
		Name:     "Henry Street Settlement",
		Category: model.CategoryHousing,
	})
	require.NoError(t, err)
}

func TestCreateService_DuplicateNameRejected(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.CreateService(&model.ServiceRecord{
		Name:     "NAMI NYC",
		Category: model.CategoryMentalHealth,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateService_UnknownCategoryRejected(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.CreateService(&model.ServiceRecord{
		Name:     "Some Org",
		Category: "transportation",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestUpdateService_RenameToExistingNameRejected(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.UpdateService(&model.ServiceRecord{
		ID:       1,
		Name:     "NAMI NYC",
		Category: model.CategoryMentalHealth,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdateService_SameNameAllowed(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.UpdateService(&model.ServiceRecord{
		ID:          2,
		Name:        "NAMI NYC",
		Category:    model.CategoryMentalHealth,
		Description: "Updated description",
	})
	assert.NoError(t, err)
}

func TestDeleteService_UnknownID(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	svc := newTestAdminService(repo)

	err := svc.DeleteService(999)
	assert.Error(t, err)
}
