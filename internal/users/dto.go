package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
)

// CreateUserDTO carries the fields needed to insert a user row.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
}

// ToModel converts the DTO into the persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
}

// UserDTO is the public shape of an identity. The password hash never leaves
// the repository layer.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persistence model onto the public DTO.
func FromModel(user *models.User) UserDTO {
	if user == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
