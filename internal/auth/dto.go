package auth

import (
	"github.com/mealbridge/mealbridge-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint. Local
// logins use email+password; federated logins present an identity token.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RegisterResponse exposes the newly created account plus its first session.
type RegisterResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
