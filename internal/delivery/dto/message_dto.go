package dto

import "time"

// Request DTOs

type SendMessageRequest struct {
	Body string `json:"body" validate:"max=5000"`
}

// Response DTOs

type MessageResponse struct {
	ID             int64     `json:"id"`
	ConsultationID int64     `json:"consultation_id"`
	Sender         string    `json:"sender"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageListResponse is a page of a chat thread. LastID is what the client
// passes as "after" on its next poll.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
	LastID   int64             `json:"last_id"`
}
