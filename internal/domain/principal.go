package domain

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodJWT     AuthMethod = "jwt"
)

// Principal captures the verified caller identity independent of the verification mechanism.
type Principal struct {
	// ID is the identity-provider user id.
	ID         string
	AuthMethod AuthMethod
	Email      string
	Name       string
}
