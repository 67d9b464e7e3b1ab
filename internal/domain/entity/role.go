package entity

// Role is the permission class of an identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePatient
}

// MessageSender maps the role to the sender label used in chat threads.
// Admins act as the doctor side of a consultation.
func (r Role) MessageSender() MessageSender {
	if r == RoleAdmin {
		return SenderDoctor
	}
	return SenderPatient
}

// RecordingSide maps the role to the side of a video consultation it records.
func (r Role) RecordingSide() RecordingRole {
	if r == RoleAdmin {
		return RecordingRoleDoctor
	}
	return RecordingRolePatient
}
