package monitor

import "time"

type Status struct {
	Redis        bool      `json:"redis"`
	Audit        bool      `json:"audit"`
	AuditEntries int       `json:"audit_entries"`
	LastCheck    time.Time `json:"last_check"`
}
