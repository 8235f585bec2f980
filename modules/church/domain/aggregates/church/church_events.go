package church

// CreatedEvent is published after a church has been persisted.
type CreatedEvent struct {
	Result Church
}

// UpdatedEvent is published after an existing church has been saved.
type UpdatedEvent struct {
	Result Church
}

// IdentifierReassignedEvent is published after a church identifier cascade
// has committed.
type IdentifierReassignedEvent struct {
	OldID string
	NewID string
}

// DeletedEvent is published after a church row has been removed.
type DeletedEvent struct {
	Result Church
}
