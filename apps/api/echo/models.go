package echoapi

type TokenResponse struct {
	Token string `json:"token"`
}
