package church

import (
	"time"
)

// Church is the top-level congregation aggregate. Its identifier is a
// human-memorable string of the form PREFIX-YEAR-SUFFIX rather than a
// surrogate key, and every dependent table references it directly.
type Church interface {
	ID() string
	Name() string
	Description() string
	Active() bool
	CreatedAt() time.Time
	UpdatedAt() time.Time

	WithID(id string) Church
	WithName(name string) Church
	WithDescription(description string) Church
	WithActive(active bool) Church
}

type Option func(*churchImpl)

func WithDescription(description string) Option {
	return func(c *churchImpl) {
		c.description = description
	}
}

func WithActive(active bool) Option {
	return func(c *churchImpl) {
		c.active = active
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(c *churchImpl) {
		c.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(c *churchImpl) {
		c.updatedAt = t
	}
}

func New(id, name string, opts ...Option) Church {
	c := &churchImpl{
		id:        id,
		name:      name,
		active:    true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type churchImpl struct {
	id          string
	name        string
	description string
	active      bool
	createdAt   time.Time
	updatedAt   time.Time
}

func (c *churchImpl) ID() string {
	return c.id
}

func (c *churchImpl) Name() string {
	return c.name
}

func (c *churchImpl) Description() string {
	return c.description
}

func (c *churchImpl) Active() bool {
	return c.active
}

func (c *churchImpl) CreatedAt() time.Time {
	return c.createdAt
}

func (c *churchImpl) UpdatedAt() time.Time {
	return c.updatedAt
}

func (c *churchImpl) WithID(id string) Church {
	out := *c
	out.id = id
	out.updatedAt = time.Now()
	return &out
}

func (c *churchImpl) WithName(name string) Church {
	out := *c
	out.name = name
	out.updatedAt = time.Now()
	return &out
}

func (c *churchImpl) WithDescription(description string) Church {
	out := *c
	out.description = description
	out.updatedAt = time.Now()
	return &out
}

func (c *churchImpl) WithActive(active bool) Church {
	out := *c
	out.active = active
	out.updatedAt = time.Now()
	return &out
}
