package entity

import "fmt"

// RecordingRole is the side of a video consultation a capture belongs to.
type RecordingRole string

const (
	RecordingRoleDoctor  RecordingRole = "doctor"
	RecordingRolePatient RecordingRole = "patient"
)

func (r RecordingRole) Valid() bool {
	return r == RecordingRoleDoctor || r == RecordingRolePatient
}

// MediaRecording is a fixed-duration capture for one side of a consultation.
// Presence of the file is the only record that it exists.
type MediaRecording struct {
	ConsultationID int64
	Role           RecordingRole
	ContentType    string
	Data           []byte
}

// RecordingFileName is the deterministic file name for a consultation side.
func RecordingFileName(consultationID int64, role RecordingRole) string {
	return fmt.Sprintf("consultation_%d_%s.mp4", consultationID, role)
}
