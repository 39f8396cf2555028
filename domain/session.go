package domain

import "encoding/json"

// EmbeddableSession is the upstream response to a session creation request.
// Raw holds the verbatim body so it can be relayed untouched.
type EmbeddableSession struct {
	SessionID string          `json:"session_id"`
	Raw       json.RawMessage `json:"-"`
}

// SessionRequest is the payload forwarded upstream.
type SessionRequest struct {
	UserID     string `json:"user_id"`
	OriginHost string `json:"origin_host"`
}
