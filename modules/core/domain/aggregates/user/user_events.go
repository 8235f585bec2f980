package user

// CreatedEvent is published after a user has been persisted.
type CreatedEvent struct {
	Result User
}

// UpdatedEvent is published after an existing user has been saved.
type UpdatedEvent struct {
	Result User
}

// DeletedEvent is published after a user row has been removed.
type DeletedEvent struct {
	Result User
}
