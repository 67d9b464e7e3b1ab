package usecase

import (
	"context"
	"os"
	"testing"
	"time"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/media"
	"telehealth-consult/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mp4Header is enough of an ftyp box to sniff as video/mp4.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}

type stubRecorder struct {
	err         error
	gotDuration time.Duration
}

func (r *stubRecorder) Record(ctx context.Context, dst string, duration time.Duration) error {
	r.gotDuration = duration
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(dst, mp4Header, 0o644)
}

type recordingFixture struct {
	consultations ConsultationUsecase
	recordings    RecordingUsecase
	recorder      *stubRecorder
	audit         *fakeAuditRepo
	pair          *entityPair
}

func newRecordingFixture(t *testing.T) *recordingFixture {
	t.Helper()
	log := newTestLogger()
	consultationRepo := &fakeConsultationRepo{}
	recorder := &stubRecorder{}
	store, err := media.NewStore(t.TempDir(), recorder, log)
	require.NoError(t, err)
	audit := &fakeAuditRepo{}
	auditService := service.NewAuditService(log, audit)

	return &recordingFixture{
		consultations: NewConsultationUsecase(log, consultationRepo, auditService),
		recordings: NewRecordingUsecase(log, consultationRepo, store, auditService, RecordingOptions{
			DefaultDuration: 60 * time.Second,
			MaxDuration:     2 * time.Minute,
		}),
		recorder: recorder,
		audit:    audit,
		pair:     newEntityPair(),
	}
}

func (f *recordingFixture) create(t *testing.T, modality string, status string) int64 {
	t.Helper()
	ctx := context.Background()
	created, err := f.consultations.CreateConsultation(ctx, f.pair.patient, &dto.CreateConsultationRequest{Modality: modality})
	require.NoError(t, err)
	if status != "" {
		_, err = f.consultations.UpdateStatus(ctx, f.pair.admin, created.ID, &dto.UpdateConsultationStatusRequest{Status: status})
		require.NoError(t, err)
	}
	return created.ID
}

func TestFetchBeforeRecordingIsAbsent(t *testing.T) {
	f := newRecordingFixture(t)
	id := f.create(t, "video", "Available")

	rec, err := f.recordings.FetchIfExists(context.Background(), f.pair.patient, id, entity.RecordingRoleDoctor)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecordThenFetch(t *testing.T) {
	f := newRecordingFixture(t)
	ctx := context.Background()
	id := f.create(t, "video", "Available")

	res, err := f.recordings.RecordFixedDuration(ctx, f.pair.patient, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "patient", res.Role)
	assert.Equal(t, len(mp4Header), res.Size)
	assert.Equal(t, 60*time.Second, f.recorder.gotDuration)

	rec, err := f.recordings.FetchIfExists(ctx, f.pair.admin, id, entity.RecordingRolePatient)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.Data)
	assert.Equal(t, "video/mp4", rec.ContentType)

	status, err := f.recordings.Status(ctx, f.pair.admin, id)
	require.NoError(t, err)
	assert.True(t, status.Patient)
	assert.False(t, status.Doctor)

	assert.Contains(t, f.audit.actions(), entity.AuditActionRecordingCreate)
}

func TestAdminRecordsDoctorSide(t *testing.T) {
	f := newRecordingFixture(t)
	// admins may record before the consultation is opened
	id := f.create(t, "video", "")

	res, err := f.recordings.RecordFixedDuration(context.Background(), f.pair.admin, id, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "doctor", res.Role)
	assert.Equal(t, 10*time.Second, f.recorder.gotDuration)
}

func TestRecordDurationIsCapped(t *testing.T) {
	f := newRecordingFixture(t)
	id := f.create(t, "video", "Available")

	_, err := f.recordings.RecordFixedDuration(context.Background(), f.pair.patient, id, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, f.recorder.gotDuration)
}

func TestRecordRejects(t *testing.T) {
	f := newRecordingFixture(t)
	ctx := context.Background()

	pending := f.create(t, "video", "")
	_, err := f.recordings.RecordFixedDuration(ctx, f.pair.patient, pending, 0)
	assert.ErrorIs(t, err, ErrConsultationNotAvailable)

	chat := f.create(t, "chat", "Available")
	_, err = f.recordings.RecordFixedDuration(ctx, f.pair.patient, chat, 0)
	assert.ErrorIs(t, err, ErrInvalidModality)

	open := f.create(t, "video", "Available")
	_, err = f.recordings.RecordFixedDuration(ctx, patientSession(), open, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.recordings.FetchIfExists(ctx, f.pair.patient, open, entity.RecordingRole("nurse"))
	assert.ErrorIs(t, err, ErrInvalidRecordingRole)
}

func TestRecordDeviceUnavailable(t *testing.T) {
	f := newRecordingFixture(t)
	f.recorder.err = media.ErrDeviceUnavailable
	id := f.create(t, "video", "Available")

	_, err := f.recordings.RecordFixedDuration(context.Background(), f.pair.patient, id, 0)
	assert.ErrorIs(t, err, media.ErrDeviceUnavailable)

	rec, err := f.recordings.FetchIfExists(context.Background(), f.pair.patient, id, entity.RecordingRolePatient)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NotContains(t, f.audit.actions(), entity.AuditActionRecordingCreate)
}
