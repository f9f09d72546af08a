package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for the Structure server.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying users both on the REST API and on the WebSocket upgrade.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims

	// Sub is the user's unique identifier (a UUID string).
	Sub string `json:"sub"`

	// Username is the user's display name, tagged onto every realtime event
	// the user's presence produces.
	Username string `json:"username"`

	// PublicKey is the user's stored public key, carried so clients can encrypt
	// point-to-point payloads without an extra lookup.
	PublicKey string `json:"pk"`

	// Role is the user's role ("User", "Moderator", "Architect", "Admin", "Creator").
	Role string `json:"role"`
}
