package entity

import "github.com/google/uuid"

// Session is the authenticated caller of a usecase operation.
// It is built per request from the access token and passed explicitly.
type Session struct {
	UserID   uuid.UUID
	Username string
	Role     Role
	TokenID  string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) IsPatient() bool {
	return s != nil && s.Role == RolePatient
}
