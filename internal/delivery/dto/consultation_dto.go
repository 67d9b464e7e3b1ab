package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateConsultationRequest struct {
	Modality   string `json:"modality" validate:"required,oneof=chat video"`
	Symptoms   string `json:"symptoms" validate:"max=5000"`
	History    string `json:"history" validate:"max=5000"`
	BloodGroup string `json:"blood_group" validate:"max=10"`
	Comments   string `json:"comments" validate:"max=5000"`
}

type UpdateConsultationStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=Processing Available Unavailable"`
	DoctorComments *string `json:"doctor_comments" validate:"omitempty,max=5000"`
}

// Response DTOs

type ConsultationResponse struct {
	ID             int64         `json:"id"`
	PatientID      uuid.UUID     `json:"patient_id"`
	Modality       string        `json:"modality"`
	Symptoms       string        `json:"symptoms"`
	History        string        `json:"history"`
	BloodGroup     string        `json:"blood_group"`
	Comments       string        `json:"comments"`
	Status         string        `json:"status"`
	DoctorComments *string       `json:"doctor_comments"`
	Patient        *UserResponse `json:"patient,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int                    `json:"total"`
}
