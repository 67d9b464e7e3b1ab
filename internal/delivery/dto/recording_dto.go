package dto

// Request DTOs

type RecordRequest struct {
	DurationSeconds int `json:"duration_seconds" validate:"gte=0"`
}

// Response DTOs

type RecordingStatusResponse struct {
	ConsultationID int64 `json:"consultation_id"`
	Doctor         bool  `json:"doctor"`
	Patient        bool  `json:"patient"`
}

type RecordingResponse struct {
	ConsultationID int64  `json:"consultation_id"`
	Role           string `json:"role"`
	Size           int    `json:"size"`
}
