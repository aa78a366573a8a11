package models

// LoginRequest is the body of POST /api/mobile/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the payload the backend returns on a successful login.
// Every field is passed through as received; nothing is validated.
type LoginResult struct {
	Token      string `json:"token"`
	UserID     string `json:"user_id"`
	DriverID   string `json:"driver_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Expiration string `json:"expiration"`
}

// Envelope wraps every backend response.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    T      `json:"data"`
}

// Credentials is the username/password pair kept for biometric re-login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
