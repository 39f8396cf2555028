package router

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/embeddables/internal/console/pages"
	"github.com/fastygo/embeddables/internal/console/state"
)

// Target is the render surface the router draws pages into.
type Target interface {
	Clear()
	Show(view pages.View)
}

// Opener opens a widget by component type, initializing the SDK on first use.
type Opener interface {
	OpenComponent(ctx context.Context, component string) error
}

type StateSource interface {
	Get() state.State
}

// LogFunc appends a line to the console's visible log.
type LogFunc func(args ...interface{})

type NavItem struct {
	Route   pages.Route
	Title   string
	Enabled bool
	Current bool
}

// Router maps location fragments to pages, enforcing the billing-mode gate.
type Router struct {
	registry map[pages.Route]pages.Page
	state    StateSource
	opener   Opener
	target   Target
	log      LogFunc
	logger   *zap.Logger

	mu      sync.Mutex
	current pages.Route
	mounted *pages.Mounted
}

func New(registry map[pages.Route]pages.Page, st StateSource, opener Opener, target Target, log LogFunc, logger *zap.Logger) *Router {
	if registry == nil {
		registry = pages.Registry()
	}
	if log == nil {
		log = func(...interface{}) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		registry: registry,
		state:    st,
		opener:   opener,
		target:   target,
		log:      log,
		logger:   logger,
		current:  pages.Carriers,
	}
}

// ParseFragment turns "#billing" into a route. Empty or unknown fragments map to carriers.
func ParseFragment(fragment string) pages.Route {
	route := pages.Route(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
	for _, known := range pages.Order {
		if route == known {
			return route
		}
	}
	return pages.Carriers
}

// Resolve applies the gate: a disabled route resolves to carriers.
func (r *Router) Resolve(route pages.Route) pages.Route {
	if _, ok := r.registry[route]; !ok {
		return pages.Carriers
	}
	if route != pages.Carriers && !r.state.Get().Allowed.Permits(string(route)) {
		return pages.Carriers
	}
	return route
}

// Navigate disposes the current page, clears the target and mounts the page for fragment.
// It returns the route actually rendered.
func (r *Router) Navigate(fragment string) pages.Route {
	requested := ParseFragment(fragment)
	route := r.Resolve(requested)
	if route != requested {
		r.logger.Debug("route gated", zap.String("requested", string(requested)), zap.String("rendered", string(route)))
	}
	page := r.registry[route]

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mounted != nil {
		if err := r.mounted.Dispose(); err != nil {
			r.logger.Debug("page dispose failed", zap.String("route", string(r.current)), zap.Error(err))
		}
		r.mounted = nil
	}
	if r.target != nil {
		r.target.Clear()
	}

	component := page.Component()
	r.mounted = page.Mount(pages.Actions{
		Open: func(ctx context.Context) error {
			return r.opener.OpenComponent(ctx, component)
		},
		Log: r.log,
	})
	r.current = route

	s := r.state.Get()
	if r.target != nil {
		r.target.Show(page.Render(pages.Model{UserLabel: s.Label(), Mode: s.Mode}))
	}
	return route
}

// Activate runs the primary action of the mounted page.
func (r *Router) Activate(ctx context.Context) error {
	r.mu.Lock()
	mounted := r.mounted
	r.mu.Unlock()
	if mounted == nil {
		return pages.ErrDisposed
	}
	return mounted.Activate(ctx)
}

// Teardown disposes the mounted page.
func (r *Router) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted != nil {
		_ = r.mounted.Dispose()
		r.mounted = nil
	}
}

func (r *Router) Current() pages.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Fragment is the location fragment of the current route.
func (r *Router) Fragment() string {
	return "#" + string(r.Current())
}

// NavItems describes the navigation bar for the current state.
func (r *Router) NavItems() []NavItem {
	allowed := r.state.Get().Allowed
	current := r.Current()
	items := make([]NavItem, 0, len(pages.Order))
	for _, route := range pages.Order {
		page, ok := r.registry[route]
		if !ok {
			continue
		}
		items = append(items, NavItem{
			Route:   route,
			Title:   page.Title(),
			Enabled: allowed.Permits(string(route)),
			Current: route == current,
		})
	}
	return items
}
