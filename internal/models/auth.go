package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest holds the payload for creating a user account.
// Role defaults to viewer when omitted.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty"`
}

// TokenRequest holds credentials for authenticating a user.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// JWTClaims represents the JWT payload for access tokens. The embedded role
// is a snapshot at issuance time; a later role upgrade takes effect only
// once a new token is issued.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
