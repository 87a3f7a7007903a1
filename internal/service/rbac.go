package service

import "github.com/MKhiriev/farmlink/models"

// Permission is a "resource:action" string checked locally for UX gating.
// The backend re-checks every action; a local grant is advisory only.
type Permission string

// PermissionAll grants every permission.
const PermissionAll Permission = "*"

const (
	PermFieldsRead     Permission = "fields:read"
	PermFieldsWrite    Permission = "fields:write"
	PermDronesRead     Permission = "drones:read"
	PermDronesCommand  Permission = "drones:command"
	PermMissionsRead   Permission = "missions:read"
	PermMissionsWrite  Permission = "missions:write"
	PermTasksRead      Permission = "tasks:read"
	PermTasksWrite     Permission = "tasks:write"
	PermReportsRead    Permission = "reports:read"
	PermReportsExport  Permission = "reports:export"
	PermMediaUpload    Permission = "media:upload"
	PermAgentsRead     Permission = "agents:read"
	PermUsersRead      Permission = "users:read"
	PermUsersManage    Permission = "users:manage"
	PermSettingsManage Permission = "settings:manage"
)

type permissionSet map[Permission]struct{}

func newPermissionSet(perms ...Permission) permissionSet {
	set := make(permissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

var rolePermissions = map[models.Role]permissionSet{
	models.RoleAdmin: newPermissionSet(PermissionAll),
	models.RoleManager: newPermissionSet(
		PermFieldsRead, PermFieldsWrite,
		PermDronesRead, PermDronesCommand,
		PermMissionsRead, PermMissionsWrite,
		PermTasksRead, PermTasksWrite,
		PermReportsRead, PermReportsExport,
		PermMediaUpload,
		PermAgentsRead,
		PermUsersRead, PermUsersManage,
	),
	models.RoleWorker: newPermissionSet(
		PermFieldsRead,
		PermDronesRead,
		PermMissionsRead,
		PermTasksRead, PermTasksWrite,
		PermReportsRead,
		PermMediaUpload,
	),
	models.RoleViewer: newPermissionSet(
		PermFieldsRead,
		PermDronesRead,
		PermMissionsRead,
		PermTasksRead,
		PermReportsRead,
	),
}

// RoleCan reports whether role grants p. Unknown roles grant nothing.
func RoleCan(role models.Role, p Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	if _, ok = set[PermissionAll]; ok {
		return true
	}
	_, ok = set[p]
	return ok
}

// ProfileTarget classifies the owner of a profile relative to the actor.
type ProfileTarget int

const (
	// TargetSelf is the actor's own profile.
	TargetSelf ProfileTarget = iota
	// TargetOther is somebody else's profile; the rule depends on the
	// target's role.
	TargetOther
)

// profileEditable lists, per actor role, the roles whose profiles the actor
// may update besides their own.
var profileEditable = map[models.Role]map[models.Role]bool{
	models.RoleAdmin: {
		models.RoleAdmin:   true,
		models.RoleManager: true,
		models.RoleWorker:  true,
		models.RoleViewer:  true,
	},
	models.RoleManager: {
		models.RoleWorker: true,
		models.RoleViewer: true,
	},
}

// ClassifyTarget returns TargetSelf when targetID is the actor's ID.
func ClassifyTarget(actor models.Identity, targetID string) ProfileTarget {
	if actor.ID != "" && actor.ID == targetID {
		return TargetSelf
	}
	return TargetOther
}

// CanUpdateProfile applies the profile update rule: anyone may update their
// own profile; otherwise the actor's role must list the target's role.
func CanUpdateProfile(actor models.Identity, target ProfileTarget, targetRole models.Role) bool {
	if target == TargetSelf {
		return true
	}
	return profileEditable[actor.Role][targetRole]
}
