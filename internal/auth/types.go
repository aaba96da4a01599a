package auth

import "github.com/david/grant-curator/internal/models"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token       string             `json:"token"`
	Contributor models.Contributor `json:"contributor"`
}
