package permissions

import "github.com/gracewave/gracewave/pkg/authz"

const (
	ActionView   = "view"
	ActionList   = "list"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAdmin  = "admin"
)

var (
	ObjectChurches = authz.ObjectName("church", "churches")
	ObjectCampuses = authz.ObjectName("church", "campuses")
	ObjectMembers  = authz.ObjectName("church", "members")
)
