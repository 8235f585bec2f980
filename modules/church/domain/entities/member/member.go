package member

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the member's role within a church, distinct from the user's
// platform role.
type Role string

const (
	RolePastor Role = "pastor"
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

func NewRole(v string) (Role, error) {
	switch Role(v) {
	case RolePastor, RoleLeader, RoleMember:
		return Role(v), nil
	default:
		return "", fmt.Errorf("invalid member role: %q", v)
	}
}

// Member ties a user to a church, optionally scoped to a campus.
type Member struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ChurchID  string
	CampusID  uuid.NullUUID
	Role      Role
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateDTO struct {
	UserID   uuid.UUID
	ChurchID string
	CampusID uuid.NullUUID
	Role     Role
}

func (d *CreateDTO) ToEntity() *Member {
	role := d.Role
	if role == "" {
		role = RoleMember
	}
	return &Member{
		ID:        uuid.New(),
		UserID:    d.UserID,
		ChurchID:  d.ChurchID,
		CampusID:  d.CampusID,
		Role:      role,
		JoinedAt:  time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreatedEvent is published after a membership has been persisted.
type CreatedEvent struct {
	Result Member
}

// DeletedEvent is published after a membership row has been removed.
type DeletedEvent struct {
	Result Member
}
