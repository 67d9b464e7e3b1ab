package entity

import "time"

// MessageSender labels which side of a consultation wrote a message.
type MessageSender string

const (
	SenderPatient MessageSender = "Patient"
	SenderDoctor  MessageSender = "Doctor"
)

// Message is one append-only entry of a consultation chat thread.
type Message struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ConsultationID int64         `gorm:"not null;index" json:"consultation_id"`
	Sender         MessageSender `gorm:"type:varchar(10);not null" json:"sender"`
	Body           string        `gorm:"column:message;type:text;not null" json:"body"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "chat_messages"
}
