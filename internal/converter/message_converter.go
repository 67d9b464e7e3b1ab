package converter

import (
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
)

func MessageToResponse(m *entity.Message) *dto.MessageResponse {
	if m == nil {
		return nil
	}

	return &dto.MessageResponse{
		ID:             m.ID,
		ConsultationID: m.ConsultationID,
		Sender:         string(m.Sender),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
}

// MessagesToListResponse builds a thread page. LastID stays at afterID when
// the page is empty so the client keeps its position.
func MessagesToListResponse(messages []entity.Message, afterID int64) *dto.MessageListResponse {
	responses := make([]dto.MessageResponse, len(messages))
	lastID := afterID
	for i := range messages {
		responses[i] = *MessageToResponse(&messages[i])
		if messages[i].ID > lastID {
			lastID = messages[i].ID
		}
	}

	return &dto.MessageListResponse{
		Messages: responses,
		Total:    len(messages),
		LastID:   lastID,
	}
}
