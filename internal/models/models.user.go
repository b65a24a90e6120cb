// FilePath: internal/models/models.user.go
package models

// User is a UI login. Password holds a bcrypt hash; files written by older
// versions may still contain plaintext, which is re-hashed on first login.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credentials is the login / registration payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
