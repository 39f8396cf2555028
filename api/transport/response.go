package transport

import (
	"encoding/json"

	"github.com/fastygo/embeddables/domain"
)

// ErrorBody is the single error shape returned by every endpoint.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorEnvelope wraps ErrorBody as {"error": {...}}.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// NewError returns an error envelope with optional details.
func NewError(code string, message string, details interface{}) ErrorEnvelope {
	return ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e ErrorEnvelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type ChildUsersResponse struct {
	Count    int                   `json:"count"`
	Children []domain.ChildSummary `json:"children"`
}

// NewChildUsersResponse projects users onto the child summary shape.
func NewChildUsersResponse(users []domain.User) ChildUsersResponse {
	children := make([]domain.ChildSummary, 0, len(users))
	for _, u := range users {
		children = append(children, u.Summary())
	}
	return ChildUsersResponse{Count: len(children), Children: children}
}

type ReferralCustomersResponse struct {
	ReferralCustomers []domain.User `json:"referral_customers"`
}

type ServicesStatus struct {
	Redis        bool   `json:"redis"`
	Audit        bool   `json:"audit"`
	AuditEntries int    `json:"audit_entries"`
	LastCheck    string `json:"last_check,omitempty"`
}

type HealthResponse struct {
	OK         bool            `json:"ok"`
	Port       string          `json:"port"`
	OriginHost string          `json:"origin_host"`
	HasAPIKey  bool            `json:"has_api_key"`
	Services   *ServicesStatus `json:"services,omitempty"`
}
