// Package console is the operator-facing side of the demo: it picks a sub-account,
// keeps the session state, routes between the dashboard pages and drives the widget SDK.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/internal/console/embed"
	"github.com/fastygo/embeddables/internal/console/pages"
	"github.com/fastygo/embeddables/internal/console/router"
	"github.com/fastygo/embeddables/internal/console/state"
)

var (
	ErrEmptyUserID = errors.New("user_id is empty")
	ErrNoSession   = errors.New("no active user; select a user first")
)

// API is the backend as used by the console.
type API interface {
	GetUsers(ctx context.Context) (*domain.Directory, error)
	CreateSession(ctx context.Context, userID string) (*domain.EmbeddableSession, error)
}

// Option is one entry of the user picker.
type Option struct {
	ID    string
	Label string
}

// Session is one operator's console. It owns the state store, the widget binder and the
// router, so nothing is shared between two sessions.
type Session struct {
	api    API
	store  *state.Store
	binder *embed.Binder
	router *router.Router
	screen *Screen
	log    *Log
	logger *zap.Logger

	mu    sync.Mutex
	users *domain.Directory
}

func New(api API, sdk embed.SDK, storage state.Storage, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		api:    api,
		store:  state.NewStore(storage),
		screen: &Screen{},
		log:    &Log{},
		logger: logger,
		users:  &domain.Directory{},
	}
	s.store.Load()
	s.binder = embed.NewBinder(sdk, api, s.store, logger)
	s.router = router.New(pages.Registry(), s.store, s.binder, s.screen, s.log.Append, logger)
	return s
}

// LoadUsers fetches the directory and infers the billing mode from it.
func (s *Session) LoadUsers(ctx context.Context) (state.Mode, error) {
	dir, err := s.api.GetUsers(ctx)
	if err != nil {
		s.log.Append("❌ Failed to load users:", err.Error())
		s.logger.Warn("load users failed", zap.Error(err))
		return state.ModeCentralized, err
	}

	s.mu.Lock()
	s.users = dir
	s.mu.Unlock()

	mode := state.ModeFor(len(dir.ReferralCustomers))
	s.log.Append("✅ Loaded users.", map[string]interface{}{
		"children":           len(dir.Children),
		"referral_customers": len(dir.ReferralCustomers),
		"mode":               mode,
	})
	for _, w := range dir.Warnings {
		s.log.Append("⚠️ "+w.Type+":", w.Message)
	}
	return mode, nil
}

// Mode is the billing mode of the last loaded directory.
func (s *Session) Mode() state.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return state.ModeFor(len(s.users.ReferralCustomers))
}

// Options lists the selectable users: referral customers when billing is decentralized,
// child users otherwise.
func (s *Session) Options() []Option {
	list := s.candidates()
	out := make([]Option, 0, len(list))
	for _, u := range list {
		out = append(out, Option{ID: u.ID, Label: u.Label()})
	}
	return out
}

// ModeHelp describes the detected mode for the picker.
func (s *Session) ModeHelp() string {
	if s.Mode() == state.ModeDecentralized {
		return "Decentralized billing detected (ReferralCustomers). Billing, Payment Logs, Reports enabled."
	}
	return "Centralized billing detected (Child Users). Only Carrier Accounts enabled."
}

// Continue makes the picked user active.
func (s *Session) Continue(userID string) (state.State, error) {
	if userID == "" {
		return s.store.Get(), ErrEmptyUserID
	}
	label := userID
	for _, u := range s.candidates() {
		if u.ID == userID && u.Name != "" {
			label = fmt.Sprintf("%s (%s)", u.Name, userID)
			break
		}
	}
	return s.store.Save(state.SelectUser(userID, label, s.Mode()))
}

// UseManual makes a typed-in user id active, keeping the detected mode.
func (s *Session) UseManual(userID string) (state.State, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		s.log.Append("❌ Manual user_id is empty.")
		return s.store.Get(), ErrEmptyUserID
	}
	return s.store.Save(state.SelectUser(userID, userID, s.Mode()))
}

// Resume restores the persisted session and renders the page for fragment.
func (s *Session) Resume(fragment string) (pages.Route, error) {
	if s.store.Load().ActiveUserID == "" {
		return "", ErrNoSession
	}
	return s.router.Navigate(fragment), nil
}

// Navigate renders the page for fragment, subject to the billing-mode gate.
func (s *Session) Navigate(fragment string) pages.Route {
	return s.router.Navigate(fragment)
}

// Open opens the widget of the current page. Failures are already in the log.
func (s *Session) Open(ctx context.Context) error {
	return s.router.Activate(ctx)
}

// SwitchUser tears the widget down and forgets the active user.
func (s *Session) SwitchUser() error {
	s.binder.Destroy()
	s.router.Teardown()
	_, err := s.store.Clear()
	return err
}

// ToggleTheme flips the theme and pushes it to a live widget instance.
func (s *Session) ToggleTheme(ctx context.Context) error {
	next, err := s.store.Save(state.SetDark(!s.store.Get().Dark))
	if err != nil {
		s.log.Append("❌ Failed to toggle theme:", err.Error())
		return err
	}
	if err := s.binder.UpdateTheme(ctx); err != nil {
		s.log.Append("❌ Failed to update theme:", err.Error())
		return err
	}
	s.log.Append("🎨 Theme toggled. dark =", fmt.Sprint(next.Dark))
	return nil
}

func (s *Session) State() state.State         { return s.store.Get() }
func (s *Session) NavItems() []router.NavItem { return s.router.NavItems() }
func (s *Session) Fragment() string           { return s.router.Fragment() }
func (s *Session) Screen() *Screen            { return s.screen }
func (s *Session) Log() []string              { return s.log.Lines() }

func (s *Session) candidates() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users.ReferralCustomers) > 0 {
		return s.users.ReferralCustomers
	}
	return s.users.Children
}
