package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role is the user's platform-wide role, distinct from any per-church
// membership role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleMember Role = "member"
)

func NewRole(v string) (Role, error) {
	switch Role(v) {
	case RoleAdmin, RoleStaff, RoleMember:
		return Role(v), nil
	default:
		return "", fmt.Errorf("invalid user role: %q", v)
	}
}

type User interface {
	ID() uuid.UUID
	Email() string
	FirstName() string
	LastName() string
	Role() Role
	// ChurchID is the denormalized church reference; empty means the user is
	// not attached to any church.
	ChurchID() string
	PasswordHash() string
	CheckPassword(password string) bool
	LastLogin() time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	WithChurchID(id string) User
	WithPasswordHash(hash string) User
	WithName(firstName, lastName string) User

	Events() []interface{}
}

type Option func(*userImpl)

func WithID(id uuid.UUID) Option {
	return func(u *userImpl) {
		u.id = id
	}
}

func WithRole(role Role) Option {
	return func(u *userImpl) {
		u.role = role
	}
}

func WithChurchID(id string) Option {
	return func(u *userImpl) {
		u.churchID = id
	}
}

func WithPasswordHash(hash string) Option {
	return func(u *userImpl) {
		u.passwordHash = hash
	}
}

func WithLastLogin(t time.Time) Option {
	return func(u *userImpl) {
		u.lastLogin = t
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(u *userImpl) {
		u.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(u *userImpl) {
		u.updatedAt = t
	}
}

func New(firstName, lastName, email string, opts ...Option) User {
	u := &userImpl{
		id:        uuid.New(),
		firstName: firstName,
		lastName:  lastName,
		email:     email,
		role:      RoleMember,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type userImpl struct {
	id           uuid.UUID
	email        string
	firstName    string
	lastName     string
	role         Role
	churchID     string
	passwordHash string
	lastLogin    time.Time
	createdAt    time.Time
	updatedAt    time.Time
	events       []interface{}
}

func (u *userImpl) ID() uuid.UUID {
	return u.id
}

func (u *userImpl) Email() string {
	return u.email
}

func (u *userImpl) FirstName() string {
	return u.firstName
}

func (u *userImpl) LastName() string {
	return u.lastName
}

func (u *userImpl) Role() Role {
	return u.role
}

func (u *userImpl) ChurchID() string {
	return u.churchID
}

func (u *userImpl) PasswordHash() string {
	return u.passwordHash
}

func (u *userImpl) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

func (u *userImpl) LastLogin() time.Time {
	return u.lastLogin
}

func (u *userImpl) CreatedAt() time.Time {
	return u.createdAt
}

func (u *userImpl) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *userImpl) WithChurchID(id string) User {
	out := *u
	out.churchID = id
	out.updatedAt = time.Now()
	return &out
}

func (u *userImpl) WithPasswordHash(hash string) User {
	out := *u
	out.passwordHash = hash
	out.updatedAt = time.Now()
	return &out
}

func (u *userImpl) WithName(firstName, lastName string) User {
	out := *u
	out.firstName = firstName
	out.lastName = lastName
	out.updatedAt = time.Now()
	return &out
}

func (u *userImpl) Events() []interface{} {
	return u.events
}

// HashPassword derives a bcrypt hash for storage on a User.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
