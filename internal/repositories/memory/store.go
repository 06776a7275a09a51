// Package memory implements the repository interfaces over process memory.
// It backs service and handler tests; the *gorm.DB arguments are ignored.
package memory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"messaging_backend/internal/models"
	"messaging_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errDuplicateToken = errors.New("duplicate refresh token")

// Store holds all tables behind one mutex.
type Store struct {
	mu        sync.Mutex
	users     map[string]*models.User
	roles     map[uint]*models.Role
	userRoles map[string]uint
	tokens    map[string]*models.RefreshToken
	messages  map[string]*models.Message
	seq       map[string]int64
	nextSeq   int64
	now       func() time.Time
}

// NewStore returns a store seeded with the three roles.
func NewStore() *Store {
	s := &Store{
		users:     make(map[string]*models.User),
		roles:     make(map[uint]*models.Role),
		userRoles: make(map[string]uint),
		tokens:    make(map[string]*models.RefreshToken),
		messages:  make(map[string]*models.Message),
		seq:       make(map[string]int64),
		now:       time.Now,
	}
	for _, r := range []models.Role{
		{ID: models.RoleIDSuperAdmin, Name: models.RoleSuperAdmin},
		{ID: models.RoleIDAdmin, Name: models.RoleAdmin},
		{ID: models.RoleIDNormalUser, Name: models.RoleNormalUser},
	} {
		role := r
		s.roles[role.ID] = &role
	}
	return s
}

func (s *Store) Users() repositories.UserRepository                 { return &userRepo{s} }
func (s *Store) Roles() repositories.RoleRepository                 { return &roleRepo{s} }
func (s *Store) RefreshTokens() repositories.RefreshTokenRepository { return &refreshTokenRepo{s} }
func (s *Store) Messages() repositories.MessageRepository           { return &messageRepo{s} }

// RefreshTokenCount reports how many session rows exist, expired or not.
func (s *Store) RefreshTokenCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// ExpireRefreshToken moves a session's expiry into the past.
func (s *Store) ExpireRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[token]; ok {
		t.ExpiresAt = s.now().Add(-time.Second)
	}
}

// User returns a copy of the stored user with its role resolved.
func (s *Store) User(id string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return s.withRoleLocked(u), true
}

// newer orders by timestamp, then by insertion for equal timestamps.
func (s *Store) newer(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return s.seq[idA] > s.seq[idB]
}

func (s *Store) track(id string) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

func (s *Store) withRoleLocked(u *models.User) *models.User {
	cp := *u
	cp.UserRole = nil
	if roleID, ok := s.userRoles[u.ID]; ok {
		role := *s.roles[roleID]
		cp.UserRole = &models.UserRole{UserID: u.ID, RoleID: roleID, Role: &role}
	}
	return &cp
}

// ============================================
// Users
// ============================================

type userRepo struct{ s *Store }

func (r *userRepo) CreateWithRole(_ *gorm.DB, user *models.User, roleID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if _, ok := s.roles[roleID]; !ok {
		return repositories.ErrRoleNotFound
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	cp.UserRole = nil
	s.users[user.ID] = &cp
	s.userRoles[user.ID] = roleID
	s.track(user.ID)

	role := *s.roles[roleID]
	user.UserRole = &models.UserRole{UserID: user.ID, RoleID: roleID, Role: &role}
	return nil
}

func (r *userRepo) ExistsByUsernameOrEmail(_ *gorm.DB, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return r.s.withRoleLocked(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) FindByUsername(_ *gorm.DB, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *userRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepo) FindByVerificationToken(_ *gorm.DB, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.VerificationToken != nil && *u.VerificationToken == token })
}

func (r *userRepo) FindByResetToken(_ *gorm.DB, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (r *userRepo) update(userID string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) MarkVerified(_ *gorm.DB, userID string) error {
	return r.update(userID, func(u *models.User) {
		u.IsVerified = true
		u.VerificationToken = nil
	})
}

func (r *userRepo) SetResetToken(_ *gorm.DB, userID, token string, expiresAt time.Time) error {
	return r.update(userID, func(u *models.User) {
		u.ResetToken = &token
		u.ResetTokenExpiresAt = &expiresAt
	})
}

func (r *userRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string) error {
	return r.update(userID, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiresAt = nil
	})
}

func (r *userRepo) List(_ *gorm.DB, limit, offset int) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, *r.s.withRoleLocked(u))
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.newer(all[i].ID, all[i].CreatedAt, all[j].ID, all[j].CreatedAt)
	})

	return page(all, limit, offset), int64(len(all)), nil
}

// ============================================
// Roles
// ============================================

type roleRepo struct{ s *Store }

func (r *roleRepo) FindByName(_ *gorm.DB, name models.RoleName) (*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoleNotFound
}

func (r *roleRepo) ReplaceUserRole(_ *gorm.DB, userID string, roleID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.userRoles[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.s.userRoles[userID] = roleID
	return nil
}

func (r *roleRepo) CountUsersWithRole(_ *gorm.DB, name models.RoleName) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, roleID := range r.s.userRoles {
		if r.s.roles[roleID].Name == name {
			n++
		}
	}
	return n, nil
}

// ============================================
// Refresh tokens
// ============================================

type refreshTokenRepo struct{ s *Store }

func (r *refreshTokenRepo) Create(_ *gorm.DB, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tokens[token.Token]; exists {
		return errDuplicateToken
	}
	token.ID = uuid.NewString()
	token.CreatedAt = r.s.now()
	cp := *token
	r.s.tokens[token.Token] = &cp
	return nil
}

func (r *refreshTokenRepo) FindValid(_ *gorm.DB, tokenString string, now time.Time) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenString]
	if !ok || t.IsExpired(now) {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *refreshTokenRepo) DeleteByToken(_ *gorm.DB, tokenString string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, tokenString)
	return nil
}

func (r *refreshTokenRepo) DeleteByUserID(_ *gorm.DB, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

// ============================================
// Messages
// ============================================

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ *gorm.DB, message *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	message.ID = uuid.NewString()
	if message.SentAt.IsZero() {
		message.SentAt = r.s.now()
	}
	cp := *message
	r.s.messages[message.ID] = &cp
	r.s.track(message.ID)
	return nil
}

func (r *messageRepo) FindByID(_ *gorm.DB, id string) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *messageRepo) List(_ *gorm.DB, filter repositories.MessageFilter) ([]models.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []models.Message
	for _, m := range r.s.messages {
		if filter.ParticipantID != "" && m.SenderID != filter.ParticipantID && m.RecipientID != filter.ParticipantID {
			continue
		}
		cp := *m
		if u, ok := r.s.users[m.SenderID]; ok {
			cp.Sender = r.s.withRoleLocked(u)
		}
		if u, ok := r.s.users[m.RecipientID]; ok {
			cp.Recipient = r.s.withRoleLocked(u)
		}
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.newer(all[i].ID, all[i].SentAt, all[j].ID, all[j].SentAt)
	})

	return page(all, filter.Limit, filter.Offset), int64(len(all)), nil
}

func (r *messageRepo) MarkRead(_ *gorm.DB, id string, readAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return repositories.ErrMessageNotFound
	}
	m.IsRead = true
	if m.ReadAt == nil {
		t := readAt
		m.ReadAt = &t
	}
	return nil
}

func (r *messageRepo) Delete(_ *gorm.DB, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return repositories.ErrMessageNotFound
	}
	delete(r.s.messages, id)
	return nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
