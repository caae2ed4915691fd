package domain

// TokenPair is what the token endpoints return: the short-lived access token
// and the longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // seconds until access token expiry
}
