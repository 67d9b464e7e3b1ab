package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a signed-up account, either a patient or an admin (doctor).
// Rows are immutable once inserted.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Age            int       `gorm:"not null" json:"age"`
	Gender         string    `gorm:"type:varchar(10);not null" json:"gender"`
	ProfilePicture *string   `gorm:"type:text" json:"profile_picture,omitempty"`
	Address        string    `gorm:"type:text;not null" json:"address"`
	Role           Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Gender values accepted at signup
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)
