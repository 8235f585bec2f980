package permissions

import "github.com/gracewave/gracewave/pkg/authz"

const (
	ActionView   = "view"
	ActionList   = "list"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var (
	ObjectUsers = authz.ObjectName("core", "users")
)
