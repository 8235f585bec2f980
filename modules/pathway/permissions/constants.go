package permissions

import "github.com/gracewave/gracewave/pkg/authz"

const (
	ActionView     = "view"
	ActionList     = "list"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionComplete = "complete"
)

var (
	ObjectPathways = authz.ObjectName("pathway", "pathways")
	ObjectProgress = authz.ObjectName("pathway", "progress")
)
