// Package passhash wraps bcrypt so the rest of the service never touches a
// plaintext password beyond this boundary.
package passhash

import "golang.org/x/crypto/bcrypt"

func Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// * Verify reports whether password matches hash. bcrypt's comparison is
// constant-time; any mismatch or malformed hash yields false, never a panic.
func Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
