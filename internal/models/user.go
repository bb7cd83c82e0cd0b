package models

type User struct {
	ID    string `json:"id" example:"demo-user-001"`             // User ID
	Email string `json:"email" example:"user@example.com"`       // User email
	Name  string `json:"name" example:"Demo User"`               // Display name
	Phone string `json:"phone,omitempty" example:"+60123456789"` // User phone number
}
