package dtos

// ----------------------
// Requests
// ----------------------

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=30"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Role        string  `json:"role" validate:"required,oneof=landlord tenant"`
	FirstName   string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string  `json:"last_name" validate:"required,min=1,max=100"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,e164"`
}

// LoginRequest authenticates by username or email, matched
// case-insensitively.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,len=64"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,len=64"`
}

// ----------------------
// Responses
// ----------------------

type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries tokens for mobile clients only; web clients
// receive them as cookies and get just the user object.
type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
