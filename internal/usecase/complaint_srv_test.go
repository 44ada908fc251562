package usecase

import (
	"context"
	"testing"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestComplaintService_Lifecycle(t *testing.T) {
	db := newFakeDB()
	srv := NewComplaintService(db.repository().Complaint, zap.NewNop())

	companyA, companyB := uuid.New(), uuid.New()
	customer := &entity.ResolvedUser{ID: uuid.New(), Role: entity.RoleUser, CompanyID: &companyA}
	tech := &entity.ResolvedUser{ID: uuid.New(), Role: entity.RoleTechnician, CompanyID: &companyA}
	outsider := &entity.ResolvedUser{ID: uuid.New(), Role: entity.RoleTechnician, CompanyID: &companyB}
	page := &request.PageQuery{Page: 1, PerPage: 10}

	created, err := srv.Create(context.Background(), customer, &request.CreateComplaintRequest{
		Title: "AC broken", Description: "Room 4 is too hot",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintOpen, created.Status)
	id := uuid.MustParse(created.ID)

	own, err := srv.ListOwn(context.Background(), customer.ID, page)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	staffList, err := srv.ListForStaff(context.Background(), outsider, page)
	require.NoError(t, err)
	assert.Empty(t, staffList)

	_, err = srv.UpdateStatus(context.Background(), outsider, id, &request.UpdateComplaintStatusRequest{Status: "in_progress"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = srv.UpdateStatus(context.Background(), tech, id, &request.UpdateComplaintStatusRequest{Status: "resolved"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := srv.UpdateStatus(context.Background(), tech, id, &request.UpdateComplaintStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, tech.ID.String(), *updated.AssignedTo)

	updated, err = srv.UpdateStatus(context.Background(), tech, id, &request.UpdateComplaintStatusRequest{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintResolved, updated.Status)
}

func TestComplaintService_StaffWithoutCompany(t *testing.T) {
	db := newFakeDB()
	srv := NewComplaintService(db.repository().Complaint, zap.NewNop())
	page := &request.PageQuery{Page: 1, PerPage: 10}

	_, err := srv.ListForStaff(context.Background(), &entity.ResolvedUser{ID: uuid.New(), Role: entity.RoleReceptionist}, page)
	assert.ErrorIs(t, err, ErrNoCompany)

	// superadmin is not scoped
	_, err = srv.ListForStaff(context.Background(), &entity.ResolvedUser{ID: uuid.New(), Role: entity.RoleSuperAdmin}, page)
	assert.NoError(t, err)
}
