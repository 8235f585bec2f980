package permissions

import "github.com/gracewave/gracewave/pkg/authz"

const (
	ActionView   = "view"
	ActionUpdate = "update"
)

var (
	ObjectNotifications = authz.ObjectName("notification", "notifications")
)
