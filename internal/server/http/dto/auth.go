package dto

// RegisterRequest creates an account, optionally under a referrer's login.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Referrer string `json:"referrer,omitempty"`
}

// LoginRequest describes login/password payload.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TokenResponse echoes the session token also set as cookie and header.
type TokenResponse struct {
	Token string `json:"token"`
}
