package families

const (
	RoleOwner  = "owner"
	RoleParent = "parent"
	RoleMember = "member"
	RoleViewer = "viewer"
)

type Operation string

const (
	OpView           Operation = "view"
	OpUpload         Operation = "upload"
	OpEdit           Operation = "edit"
	OpDelete         Operation = "delete"
	OpManageChildren Operation = "manage_children"
	OpInvite         Operation = "invite"
	OpManageMembers  Operation = "manage_members"
)

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleParent, RoleMember, RoleViewer:
		return true
	}
	return false
}

// InvitableRole reports whether an invite may grant role. Ownership is never
// handed out by invite.
func InvitableRole(role string) bool {
	return ValidRole(role) && role != RoleOwner
}

// Allowed reports whether a member with role may perform op.
func Allowed(role string, op Operation) bool {
	switch role {
	case RoleOwner:
		return true

	case RoleParent:
		return op != OpManageMembers

	case RoleMember:
		switch op {
		case OpView, OpUpload, OpEdit:
			return true
		}
		return false

	case RoleViewer:
		return op == OpView

	default:
		return false
	}
}
