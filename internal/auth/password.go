package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. OAuth-only
// accounts have no hash and never match.
func ComparePassword(hashed, plain string) error {
	if hashed == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
