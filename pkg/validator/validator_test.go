package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `validate:"required,username"`
	Age      int    `validate:"gte=0,lte=150"`
	Gender   string `validate:"required,oneof=Male Female Other"`
}

func TestValidateUsernameTag(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"plain", "alice", false},
		{"with punctuation", "dr.house_md-1", false},
		{"too short", "al", true},
		{"path separator", "../etc", true},
		{"space", "bob smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&signup{Username: tt.username, Age: 30, Gender: "Other"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&signup{Username: "x", Age: 200, Gender: "Unknown"})
	require.Error(t, err)

	formatted := v.FormatValidationErrors(err)
	assert.Equal(t, "Username must be 3-64 letters, digits, '.', '_' or '-'", formatted["Username"])
	assert.Equal(t, "Age must be less than or equal to 150", formatted["Age"])
	assert.Equal(t, "Gender must be one of: Male Female Other", formatted["Gender"])
}
