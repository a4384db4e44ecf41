package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/hzpumpworks/workshop-backend/pkg/enums"
)

// AccessTokenPayload is the input used to mint an access token.
type AccessTokenPayload struct {
	UserID string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the JWT claim set carried by access tokens.
type AccessTokenClaims struct {
	UserID string         `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
