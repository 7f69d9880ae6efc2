package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  string
	StoreID int64
	JTI     string
}

// AccessTokenClaims represents the typed JWT accepted by the checkout API.
type AccessTokenClaims struct {
	UserID  string `json:"user_id"`
	StoreID int64  `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}
