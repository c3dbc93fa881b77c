package types

// RegisterRequest is the payload for account registration. Role is chosen at
// registration and never inferred later.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"` // farmers
	FarmName string `json:"farm_name,omitempty"`
	Company  string `json:"company,omitempty"` // buyers
}

// LoginRequest is the payload for account login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the payload for changing an account password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}
