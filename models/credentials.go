package models

// Credentials is the sign-in payload. Validation tags are checked locally
// before anything is sent to the identity backend.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// String masks the password so Credentials can be logged safely.
func (c Credentials) String() string {
	return "Credentials{Email: " + c.Email + ", Password: ***}"
}
