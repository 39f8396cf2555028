// Package state holds the operator console's session state: the active user, the billing mode
// and the pages that mode unlocks. It is persisted as one JSON entry in a session-scoped Storage.
package state

import (
	"encoding/json"
	"sync"
)

// StorageKey is the entry holding the serialized State.
const StorageKey = "ep_demo_session_v1"

// Mode is the account billing topology.
type Mode string

const (
	ModeCentralized   Mode = "centralized"
	ModeDecentralized Mode = "decentralized"
)

// ModeFor infers the mode from the number of referral customers.
func ModeFor(referralCustomers int) Mode {
	if referralCustomers > 0 {
		return ModeDecentralized
	}
	return ModeCentralized
}

// Allowed lists which console pages are enabled.
type Allowed struct {
	Carriers    bool `json:"carriers"`
	Billing     bool `json:"billing"`
	PaymentLogs bool `json:"paymentlogs"`
	Reports     bool `json:"reports"`
}

// ComputeAllowed derives page access from the billing mode. Carriers is always enabled;
// the other pages only for decentralized billing.
func ComputeAllowed(mode Mode) Allowed {
	decentralized := mode == ModeDecentralized
	return Allowed{
		Carriers:    true,
		Billing:     decentralized,
		PaymentLogs: decentralized,
		Reports:     decentralized,
	}
}

// Permits reports whether the named route is enabled.
func (a Allowed) Permits(route string) bool {
	switch route {
	case "carriers":
		return a.Carriers
	case "billing":
		return a.Billing
	case "paymentlogs":
		return a.PaymentLogs
	case "reports":
		return a.Reports
	default:
		return false
	}
}

type State struct {
	ActiveUserID    string  `json:"activeUserId"`
	ActiveUserLabel string  `json:"activeUserLabel"`
	Mode            Mode    `json:"mode"`
	Allowed         Allowed `json:"allowed"`
	Dark            bool    `json:"dark"`
}

// Defaults is the state of a console with no user selected.
func Defaults() State {
	return State{
		Mode:    ModeCentralized,
		Allowed: ComputeAllowed(ModeCentralized),
	}
}

// Label returns the active user label, falling back to the id.
func (s State) Label() string {
	if s.ActiveUserLabel != "" {
		return s.ActiveUserLabel
	}
	return s.ActiveUserID
}

// Patch is a shallow partial update; nil fields are left untouched.
type Patch struct {
	ActiveUserID    *string
	ActiveUserLabel *string
	Mode            *Mode
	Dark            *bool
}

// SelectUser builds the patch written when the operator picks a user.
func SelectUser(id, label string, mode Mode) Patch {
	return Patch{ActiveUserID: &id, ActiveUserLabel: &label, Mode: &mode}
}

// SetDark builds a theme patch.
func SetDark(dark bool) Patch {
	return Patch{Dark: &dark}
}

func (p Patch) apply(s *State) {
	if p.ActiveUserID != nil {
		s.ActiveUserID = *p.ActiveUserID
	}
	if p.ActiveUserLabel != nil {
		s.ActiveUserLabel = *p.ActiveUserLabel
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.Dark != nil {
		s.Dark = *p.Dark
	}
}

// Store keeps the in-memory snapshot and mirrors every write to Storage.
// Allowed is never written directly: it is recomputed from Mode on every load and save.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	state   State
}

func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{storage: storage, state: Defaults()}
}

// Load reads the persisted entry and merges it over the defaults. A missing or unreadable
// entry yields the defaults.
func (s *Store) Load() State {
	next := Defaults()
	if raw, ok, err := s.storage.Get(StorageKey); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &next); err != nil {
			next = Defaults()
		}
	}
	normalize(&next)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return next
}

// Save merges the patch into the current state and persists it.
func (s *Store) Save(p Patch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	p.apply(&next)
	normalize(&next)

	raw, err := json.Marshal(next)
	if err != nil {
		return s.state, err
	}
	if err := s.storage.Set(StorageKey, string(raw)); err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

// Clear resets to the defaults and removes the persisted entry.
func (s *Store) Clear() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Defaults()
	return s.state, s.storage.Remove(StorageKey)
}

// Get returns the current snapshot.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func normalize(s *State) {
	if s.Mode != ModeDecentralized {
		s.Mode = ModeCentralized
	}
	s.Allowed = ComputeAllowed(s.Mode)
}
