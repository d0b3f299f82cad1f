package auth

import "github.com/golang-jwt/jwt/v5"

// ClerkClaims is the session token payload issued by Clerk. Only the fields the
// backend reads are mapped.
type ClerkClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	// Subject is the Clerk user id (the token's sub claim).
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

func principalFrom(claims *ClerkClaims) Principal {
	return Principal{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
}
