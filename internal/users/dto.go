package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
)

// RegisterInput creates an operator account. Registration is admin gated at
// the route level; Role defaults to staff when empty.
type RegisterInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Name     string         `json:"name" validate:"required"`
	Password string         `json:"password" validate:"required,min=8"`
	Role     enums.UserRole `json:"role,omitempty"`
}

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserView is the account shape returned to clients. The password hash never
// leaves this package.
type UserView struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"isActive"`
	AvatarURL *string        `json:"avatarUrl,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LoginResult is the token pair issued on login and refresh.
type LoginResult struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UserList is one page of accounts.
type UserList struct {
	Users []UserView `json:"users"`
	Total int64      `json:"total"`
}

func viewFrom(user *models.User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
