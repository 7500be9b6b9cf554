package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("user not found")
	ErrInternal               = errors.New("internal error")
)

const minPasswordLength = 6

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	UserType   string
	Location   string
	Pincode    string
	Area       string
	Skills     []string
	Company    string
	Experience string
	Bio        string
}

type LoginInput struct {
	Email    string
	Password string
	// Scope names the session to open. Empty means the single current user.
	Scope string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, bool, error)
	Login(ctx context.Context, in LoginInput) (user.User, error)
	SetCurrentUser(ctx context.Context, scope, userID string) (user.User, error)
	CurrentUser(ctx context.Context, scope string) (user.User, bool, error)
	Logout(ctx context.Context, scope string) error
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type Service struct {
	store    *store.Store
	users    user.Repository
	sessions *session.Holder
	cost     int
	logger   *log.Logger
	now      func() time.Time

	// dummyHash is compared against on unknown emails so a miss costs the
	// same as a wrong password.
	dummyOnce sync.Once
	dummyHash []byte
}

var compareHash = bcrypt.CompareHashAndPassword

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("bluujobs-no-such-user"), s.cost)
		if err != nil {
			s.logf("[Auth] dummy hash failed err=%v", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func NewService(st *store.Store, users user.Repository, sessions *session.Holder, bcryptCost int, logger *log.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:    st,
		users:    users,
		sessions: sessions,
		cost:     bcryptCost,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return user.User{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	typ, ok := user.ParseType(in.UserType)
	if !ok || typ == user.TypeAdmin {
		return user.User{}, ErrInvalidInput
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		UserType:     typ,
		Location:     strings.TrimSpace(in.Location),
		Pincode:      strings.TrimSpace(in.Pincode),
		Area:         strings.TrimSpace(in.Area),
		Experience:   strings.TrimSpace(in.Experience),
		Bio:          textutil.PlainText(in.Bio),
		CreatedAt:    s.now().UTC(),
	}
	switch typ {
	case user.TypeWorker:
		skills := in.Skills
		user.Patch{Skills: &skills}.Apply(&u)
	case user.TypeEmployer:
		u.Company = strings.TrimSpace(in.Company)
	}
	complete := user.Completeness(u)
	u.ProfileComplete = &complete

	err = s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		return s.users.Create(ctx, tx, u)
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		s.logf("[Auth] register failed email=%s err=%v", email, err)
		return user.User{}, ErrInternal
	}
	return u.Sanitized(), nil
}

// Authenticate returns the user whose email matches exactly and whose
// password verifies. ok is false on any mismatch.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return user.User{}, false, nil
	}

	var u user.User
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		u, err = s.users.GetByEmail(ctx, tx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = compareHash(s.dummy(), []byte(password))
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}

	if err := compareHash([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, false, nil
	}
	return u.Sanitized(), true, nil
}

// Login authenticates and opens the session named by in.Scope.
func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	u, ok, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		s.logf("[Auth] login lookup failed err=%v", err)
		return user.User{}, ErrInternal
	}
	if !ok {
		return user.User{}, ErrInvalidCredentials
	}

	err = s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		return s.sessions.Set(ctx, tx, in.Scope, u)
	})
	if err != nil {
		s.logf("[Auth] open session failed user_id=%s err=%v", u.ID, err)
		return user.User{}, ErrInternal
	}
	return u, nil
}

// SetCurrentUser opens a session for an existing user without a password
// check, for trusted callers.
func (s *Service) SetCurrentUser(ctx context.Context, scope, userID string) (user.User, error) {
	var u user.User
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		u, err = s.users.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.sessions.Set(ctx, tx, scope, u)
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return u.Sanitized(), nil
}

func (s *Service) CurrentUser(ctx context.Context, scope string) (user.User, bool, error) {
	var (
		u  user.User
		ok bool
	)
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		u, ok, err = s.sessions.Get(ctx, tx, scope)
		return err
	})
	if err != nil {
		return user.User{}, false, ErrInternal
	}
	return u, ok, nil
}

func (s *Service) Logout(ctx context.Context, scope string) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		return s.sessions.Clear(ctx, tx, scope)
	})
	if err != nil {
		s.logf("[Auth] logout failed scope=%s err=%v", scope, err)
		return ErrInternal
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if !isValidPassword(next) {
		return ErrInvalidInput
	}
	hash, err := HashPassword(next, s.cost)
	if err != nil {
		return ErrInternal
	}

	err = s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		_, err := s.users.Update(ctx, tx, userID, func(u *user.User) error {
			if compareHash([]byte(u.PasswordHash), []byte(current)) != nil {
				return ErrInvalidCredentials
			}
			u.PasswordHash = hash
			return nil
		})
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, user.ErrNotFound):
		return ErrNotFound
	default:
		return ErrInternal
	}
}

// HashPassword returns the bcrypt hash of pw at cost.
func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// normalizeEmail only trims; addresses compare case-sensitively.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= minPasswordLength
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
