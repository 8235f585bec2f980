package progress

import (
	"time"

	"github.com/google/uuid"
)

// Progress records a member completing a pathway step.
type Progress struct {
	ID          uuid.UUID
	MemberID    uuid.UUID
	StepID      uuid.UUID
	CompletedAt time.Time
}

// CompletedEvent is published after a step completion has been recorded.
type CompletedEvent struct {
	Result Progress
}
