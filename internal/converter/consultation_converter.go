package converter

import (
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to ConsultationResponse DTO.
// The patient is included when it was preloaded.
func ConsultationToResponse(c *entity.Consultation) *dto.ConsultationResponse {
	if c == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:             c.ID,
		PatientID:      c.PatientID,
		Modality:       string(c.Modality),
		Symptoms:       c.Symptoms,
		History:        c.History,
		BloodGroup:     c.BloodGroup,
		Comments:       c.Comments,
		Status:         string(c.Status),
		DoctorComments: c.DoctorComments,
		Patient:        UserToResponse(c.Patient),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		responses[i] = *ConsultationToResponse(&consultations[i])
	}
	return responses
}
