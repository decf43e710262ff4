// Package testutil holds in-memory stand-ins for the database, mailer and
// clock so service and handler tests run without external systems.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/repository"
	"rotkit/internal/service"

	"github.com/google/uuid"
)

type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func NewUserStore(users ...entity.User) *UserStore {
	s := &UserStore{users: make(map[uuid.UUID]entity.User)}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *UserStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (s *UserStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return s.update(id, func(user *entity.User) { user.LastLoginAt = &at })
}

func (s *UserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(user *entity.User) { user.PasswordHash = &passwordHash })
}

func (s *UserStore) UpdateProfileImage(_ context.Context, id uuid.UUID, imageURL string) error {
	return s.update(id, func(user *entity.User) { user.ProfileImage = &imageURL })
}

func (s *UserStore) update(id uuid.UUID, apply func(*entity.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	apply(&user)
	s.users[id] = user
	return nil
}

type AdminStore struct {
	mu     sync.Mutex
	admins map[uuid.UUID]entity.Admin
}

func NewAdminStore(admins ...entity.Admin) *AdminStore {
	s := &AdminStore{admins: make(map[uuid.UUID]entity.Admin)}
	for _, admin := range admins {
		s.admins[admin.ID] = admin
	}
	return s
}

func (s *AdminStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Admin, error) {
	return s.find(func(a entity.Admin) bool { return a.ID == id })
}

func (s *AdminStore) FindByAdminID(_ context.Context, adminID string) (*entity.Admin, error) {
	return s.find(func(a entity.Admin) bool { return a.AdminID == adminID })
}

func (s *AdminStore) FindByEmail(_ context.Context, email string) (*entity.Admin, error) {
	return s.find(func(a entity.Admin) bool { return a.Email == email })
}

func (s *AdminStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return s.update(id, func(admin *entity.Admin) { admin.LastLoginAt = &at })
}

func (s *AdminStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(admin *entity.Admin) { admin.PasswordHash = passwordHash })
}

func (s *AdminStore) UpdateProfileImage(_ context.Context, id uuid.UUID, imageURL string) error {
	return s.update(id, func(admin *entity.Admin) { admin.ProfileImage = &imageURL })
}

func (s *AdminStore) Upsert(_ context.Context, admin *entity.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.admins {
		if existing.AdminID == admin.AdminID {
			admin.ID = id
		}
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	s.admins[admin.ID] = *admin
	return nil
}

func (s *AdminStore) find(match func(entity.Admin) bool) (*entity.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, admin := range s.admins {
		if match(admin) {
			found := admin
			return &found, nil
		}
	}
	return nil, nil
}

func (s *AdminStore) update(id uuid.UUID, apply func(*entity.Admin)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return errors.New("admin not found")
	}
	apply(&admin)
	s.admins[id] = admin
	return nil
}

type SecurityLogStore struct {
	mu   sync.Mutex
	logs []entity.SecurityLog
}

func (s *SecurityLogStore) Log(_ context.Context, log *entity.SecurityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	s.logs = append(s.logs, *log)
	return nil
}

func (s *SecurityLogStore) ListRecent(_ context.Context, limit int) ([]entity.SecurityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]entity.SecurityLog(nil), s.logs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SecurityLogStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.logs[:0]
	var removed int64
	for _, log := range s.logs {
		if log.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, log)
	}
	s.logs = kept
	return removed, nil
}

func (s *SecurityLogStore) Actions() []entity.SecurityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(s.logs))
	for _, log := range s.logs {
		actions = append(actions, log.Action)
	}
	return actions
}

// Mailer records every OTP email. Set Err to simulate a provider outage.
type Mailer struct {
	mu   sync.Mutex
	Sent []service.OTPEmail
	Err  error
}

func (m *Mailer) SendOTPEmail(_ context.Context, email service.OTPEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *Mailer) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Code
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// FixedCodes hands out codes in order and then repeats the last one.
type FixedCodes struct {
	mu    sync.Mutex
	Codes []string
	next  int
}

func (g *FixedCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Codes) == 0 {
		return "123456", nil
	}
	code := g.Codes[g.next]
	if g.next < len(g.Codes)-1 {
		g.next++
	}
	return code, nil
}

// PlainHasher stands in for bcrypt, whose cost makes table tests slow.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (PlainHasher) Verify(hash string, password string) bool {
	return hash == "plain:"+password
}
