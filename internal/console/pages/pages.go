package pages

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/embeddables/internal/console/state"
)

// Route names a console page. It doubles as the location fragment.
type Route string

const (
	Carriers    Route = "carriers"
	Billing     Route = "billing"
	PaymentLogs Route = "paymentlogs"
	Reports     Route = "reports"
)

// ErrDisposed is returned when a disposed page is used again.
var ErrDisposed = errors.New("page already disposed")

// Model is what a page renders from.
type Model struct {
	UserLabel string
	Mode      state.Mode
}

// View is the rendered page, independent of any UI toolkit.
type View struct {
	Route       Route
	Title       string
	Description string
	ActionLabel string
	Component   string
	UserLabel   string
	Mode        state.Mode
}

// Actions are the callbacks a mounted page may invoke.
type Actions struct {
	Open func(ctx context.Context) error
	Log  func(args ...interface{})
}

type Page interface {
	Route() Route
	Title() string
	Component() string
	Render(m Model) View
	Mount(a Actions) *Mounted
}

type page struct {
	route       Route
	title       string
	description string
	actionLabel string
	component   string
	subject     string
}

func (p page) Route() Route      { return p.route }
func (p page) Title() string     { return p.title }
func (p page) Component() string { return p.component }

func (p page) Render(m Model) View {
	return View{
		Route:       p.route,
		Title:       p.title,
		Description: p.description,
		ActionLabel: p.actionLabel,
		Component:   p.component,
		UserLabel:   m.UserLabel,
		Mode:        m.Mode,
	}
}

func (p page) Mount(a Actions) *Mounted {
	return &Mounted{page: p, actions: &a}
}

// Mounted is a live page. Dispose detaches its actions so later activations do nothing.
type Mounted struct {
	mu      sync.Mutex
	page    page
	actions *Actions
}

// Activate runs the page's primary action (open the widget). Failures are logged
// through the page's log callback and returned.
func (m *Mounted) Activate(ctx context.Context) error {
	m.mu.Lock()
	actions := m.actions
	m.mu.Unlock()
	if actions == nil {
		return ErrDisposed
	}
	if actions.Open == nil {
		return nil
	}

	err := actions.Open(ctx)
	if err != nil && actions.Log != nil {
		actions.Log("❌ Failed to open "+m.page.subject+":", err.Error())
	}
	return err
}

// Dispose detaches the page. A second call returns ErrDisposed.
func (m *Mounted) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actions == nil {
		return ErrDisposed
	}
	m.actions = nil
	return nil
}

// Disposed reports whether Dispose has run.
func (m *Mounted) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actions == nil
}

// Registry returns the four console pages keyed by route.
func Registry() map[Route]Page {
	return map[Route]Page{
		Carriers: page{
			route:       Carriers,
			title:       "Carrier Accounts",
			description: "Manage carrier connections and configurations for the current user context.",
			actionLabel: "Open Manage Carriers",
			component:   "manage-carriers",
			subject:     "carriers",
		},
		Billing: page{
			route:       Billing,
			title:       "Billing",
			description: "View and manage wallet/billing settings (decentralized billing only).",
			actionLabel: "Open Manage Billing",
			component:   "manage-billing",
			subject:     "billing",
		},
		PaymentLogs: page{
			route:       PaymentLogs,
			title:       "Payment Logs",
			description: "View transactions and payment activity for the current user wallet.",
			actionLabel: "Open Payment Logs",
			component:   "manage-payment-logs",
			subject:     "payment logs",
		},
		Reports: page{
			route:       Reports,
			title:       "Reports",
			description: "Access reporting for labels, spend, and activity (if available).",
			actionLabel: "Open Reports",
			component:   "manage-reports",
			subject:     "reports",
		},
	}
}

// Order is the navigation order.
var Order = []Route{Carriers, Billing, PaymentLogs, Reports}
