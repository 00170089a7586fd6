package api

// RegisterGuestRequest represents the request to register a guest account
type RegisterGuestRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
}

// RegisterGuestResponse represents the response after a guest registration
type RegisterGuestResponse struct {
	ID                   string `json:"id"`
	Email                string `json:"email"`
	VerificationRequired bool   `json:"verification_required"`
	Message              string `json:"message"`
}

// VerifyResponse represents the response after redeeming a verification token
type VerifyResponse struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	VerifiedAt *string `json:"verified_at,omitempty"`
}

// ResendVerificationRequest represents the request to resend a verification email
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// ResendVerificationResponse represents the response after a resend request
type ResendVerificationResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VerificationStatusResponse represents the verification status of the
// authenticated account
type VerificationStatusResponse struct {
	EmailVerified bool    `json:"email_verified"`
	VerifiedAt    *string `json:"verified_at,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
