package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the token claims attached to authenticated requests.
type JWTClaims struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated identity.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo is the public identity shape echoed to clients.
type UserInfo struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}

// RegisterRequest is a self-service registration submission.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role" validate:"required,oneof=student teacher"`
	FullName      string `json:"fullName" validate:"required"`
	ContactNumber string `json:"contactNumber"`
}
