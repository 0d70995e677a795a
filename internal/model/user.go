package model

// User is the authenticated caller as reported by the identity provider.
// Users are not stored locally; the id scopes every write.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
