package entity

import (
	"time"

	"github.com/google/uuid"
)

// Modality is the channel a consultation runs over.
type Modality string

const (
	ModalityChat  Modality = "chat"
	ModalityVideo Modality = "video"
)

func (m Modality) Valid() bool {
	return m == ModalityChat || m == ModalityVideo
}

// ConsultationStatus is set by an admin after reviewing the request.
type ConsultationStatus string

const (
	ConsultationStatusProcessing  ConsultationStatus = "Processing"
	ConsultationStatusAvailable   ConsultationStatus = "Available"
	ConsultationStatusUnavailable ConsultationStatus = "Unavailable"
)

func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationStatusProcessing, ConsultationStatusAvailable, ConsultationStatusUnavailable:
		return true
	}
	return false
}

// Consultation is a patient request for medical attention over one modality.
type Consultation struct {
	ID             int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	Modality       Modality           `gorm:"column:modality;type:varchar(10);not null;index" json:"modality"`
	Symptoms       string             `gorm:"type:text" json:"symptoms"`
	History        string             `gorm:"column:history_of_illness;type:text" json:"history"`
	BloodGroup     string             `gorm:"type:varchar(10)" json:"blood_group"`
	Comments       string             `gorm:"type:text" json:"comments"`
	Status         ConsultationStatus `gorm:"type:varchar(20);not null;default:'Processing'" json:"status"`
	DoctorComments *string            `gorm:"type:text" json:"doctor_comments,omitempty"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// IsAvailable reports whether the doctor has opened the consultation.
func (c *Consultation) IsAvailable() bool {
	return c.Status == ConsultationStatusAvailable
}

// OwnedBy reports whether the consultation was created by the given patient.
func (c *Consultation) OwnedBy(userID uuid.UUID) bool {
	return c.PatientID == userID
}
