package usecase

import (
	"context"
	"testing"

	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogs(t *testing.T) {
	log := newTestLogger()
	repo := &fakeAuditRepo{}
	audit := service.NewAuditService(log, repo)
	uc := NewAuditLogUsecase(log, repo)
	ctx := context.Background()
	admin := adminSession()

	audit.LogEvent(ctx, &admin.UserID, entity.AuditActionUserLogin, entity.JSON{"role": "admin"})
	audit.LogUpdate(ctx, &admin.UserID, entity.AuditActionConsultationStatusUpdate, "consultation", "1",
		map[string]interface{}{"status": "Processing"}, map[string]interface{}{"status": "Available"})

	_, err := uc.GetAllAuditLogs(ctx, patientSession())
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := uc.GetAllAuditLogs(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Nil(t, list.Logs[0].User)
	assert.Equal(t, "consultation", list.Logs[1].Metadata["entity"])

	one, err := uc.GetAuditLog(ctx, admin, list.Logs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionConsultationStatusUpdate, one.Action)

	_, err = uc.GetAuditLog(ctx, admin, 404)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
