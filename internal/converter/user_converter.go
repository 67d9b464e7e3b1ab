package converter

import (
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Age:       user.Age,
		Gender:    user.Gender,
		Address:   user.Address,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if user.ProfilePicture != nil {
		response.ProfilePicture = *user.ProfilePicture
	}

	return response
}

func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}
