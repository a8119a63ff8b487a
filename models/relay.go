package models

// RelayTokenResponse, medya relay'ine (LiveKit) katılmak için client'a
// dönen token paketi.
type RelayTokenResponse struct {
	Token  string `json:"token"`
	URL    string `json:"url"`
	CallID string `json:"call_id"`
}
