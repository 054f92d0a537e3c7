package model

// TokenPair is returned by login and refresh. RefreshToken is omitted on
// refresh when rotation is disabled.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RegisterResponse struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type LogoutResponse struct {
	Success string `json:"success"`
}
