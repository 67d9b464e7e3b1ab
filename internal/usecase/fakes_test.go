package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"telehealth-consult/config"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/service"
	"telehealth-consult/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestJWTService() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func adminSession() *entity.Session {
	return &entity.Session{UserID: uuid.New(), Username: "doc", Role: entity.RoleAdmin, TokenID: "admin-token"}
}

func patientSession() *entity.Session {
	return &entity.Session{UserID: uuid.New(), Username: "pat", Role: entity.RolePatient, TokenID: "patient-token"}
}

// fakeUserRepo mimics the users table including its unique username constraint.
type fakeUserRepo struct {
	mu    sync.Mutex
	users []entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearProfilePicture(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].ProfilePicture = nil
		}
	}
	return nil
}

func (r *fakeUserRepo) FindAllByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []entity.User
	for _, u := range r.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

type fakeConsultationRepo struct {
	mu            sync.Mutex
	nextID        int64
	consultations []entity.Consultation
}

func (r *fakeConsultationRepo) Create(ctx context.Context, c *entity.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.consultations = append(r.consultations, *c)
	return nil
}

func (r *fakeConsultationRepo) FindByID(ctx context.Context, id int64) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.consultations {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeConsultationRepo) FindByPatient(ctx context.Context, patientID uuid.UUID, modality entity.Modality) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.PatientID == patientID && c.Modality == modality {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindByModality(ctx context.Context, modality entity.Modality) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.Modality == modality {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) UpdateStatus(ctx context.Context, id int64, status entity.ConsultationStatus, doctorComments *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.consultations {
		if r.consultations[i].ID == id {
			r.consultations[i].Status = status
			r.consultations[i].DoctorComments = doctorComments
			return 1, nil
		}
	}
	return 0, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []entity.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) FindByConsultation(ctx context.Context, consultationID int64, afterID int64) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Message
	for _, m := range r.messages {
		if m.ConsultationID == consultationID && m.ID > afterID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	nextID int64
	logs   []entity.AuditLog
	err    error
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	log.ID = r.nextID
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(ctx context.Context) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.logs...), nil
}

func (r *fakeAuditRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeSessionStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{keys: make(map[string]bool)}
}

func (s *fakeSessionStore) key(kind service.TokenKind, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (s *fakeSessionStore) Store(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[s.key(kind, userID, tokenID)] = true
	return nil
}

func (s *fakeSessionStore) Exists(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[s.key(kind, userID, tokenID)], nil
}

func (s *fakeSessionStore) Revoke(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, s.key(kind, userID, tokenID))
	return nil
}

// fakeNotifier is an in-process stand-in for the Redis pub/sub channel.
type fakeNotifier struct {
	mu   sync.Mutex
	subs map[int64][]*fakeSubscription
	// subscribed receives the consultation id each time someone subscribes.
	subscribed chan int64
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		subs:       make(map[int64][]*fakeSubscription),
		subscribed: make(chan int64, 16),
	}
}

func (n *fakeNotifier) Publish(ctx context.Context, msg *entity.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.subs[msg.ConsultationID] {
		select {
		case s.c <- struct{}{}:
		default:
		}
	}
	return nil
}

func (n *fakeNotifier) Subscribe(ctx context.Context, consultationID int64) (service.Subscription, error) {
	n.mu.Lock()
	sub := &fakeSubscription{c: make(chan struct{}, 1)}
	n.subs[consultationID] = append(n.subs[consultationID], sub)
	n.mu.Unlock()
	n.subscribed <- consultationID
	return sub, nil
}

type fakeSubscription struct {
	c chan struct{}
}

func (s *fakeSubscription) C() <-chan struct{} { return s.c }

func (s *fakeSubscription) Close() error { return nil }

// entityPair is a patient and an admin acting on the same consultations.
type entityPair struct {
	patient *entity.Session
	admin   *entity.Session
}

func newEntityPair() *entityPair {
	return &entityPair{patient: patientSession(), admin: adminSession()}
}
