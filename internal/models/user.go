package models

import "errors"

// ErrUsernameTaken is returned by stores when a username already exists.
var ErrUsernameTaken = errors.New("username already exists")

// User is an account holder. Usernames are stored lower-cased and are unique
// across the user set; the Password field holds an argon2id digest, never the
// raw password.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"password,omitempty" db:"password"`
}

// Public returns a copy safe to embed in API responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
