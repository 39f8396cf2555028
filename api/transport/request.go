package transport

type SessionRequest struct {
	UserID string `json:"user_id"`
}
