package console

import (
	"sync"

	"github.com/fastygo/embeddables/internal/console/pages"
)

// Screen is the render target of the dashboard. It keeps the last shown view.
type Screen struct {
	mu   sync.Mutex
	view *pages.View
}

func (s *Screen) Clear() {
	s.mu.Lock()
	s.view = nil
	s.mu.Unlock()
}

func (s *Screen) Show(view pages.View) {
	s.mu.Lock()
	s.view = &view
	s.mu.Unlock()
}

// View returns the view on screen, if any.
func (s *Screen) View() (pages.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return pages.View{}, false
	}
	return *s.view, true
}
