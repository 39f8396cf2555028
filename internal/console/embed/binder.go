package embed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/internal/console/state"
)

const (
	FontCSS     = "https://fonts.googleapis.com/css2?family=Zen+Dots&display=swap"
	ModalZIndex = "123456"
)

var (
	ErrNoActiveUser   = errors.New("no active user selected")
	ErrSDKUnavailable = errors.New("embeddables SDK not loaded")
	ErrUserMismatch   = errors.New("active user changed; please re-initialize session")
)

type Font struct {
	CSSSrc string `json:"cssSrc"`
}

type Appearance struct {
	Tokens      map[string]string `json:"tokens"`
	ModalZIndex string            `json:"modalZIndex"`
}

// AppearanceFor returns the widget theme for the console theme flag.
func AppearanceFor(dark bool) Appearance {
	tokens := map[string]string{
		"font.family":       "calibri, sans-serif",
		"color.neutral.000": "#ffffff",
	}
	if dark {
		tokens["color.neutral.000"] = "#1f2937"
		tokens["color.neutral.900"] = "#ffffff"
	}
	return Appearance{Tokens: tokens, ModalZIndex: ModalZIndex}
}

// Options is handed to the SDK on initialization.
type Options struct {
	FetchSessionID func(ctx context.Context) (string, error)
	Fonts          []Font
	Appearance     Appearance
}

// Instance is an initialized widget SDK.
type Instance interface {
	Open(ctx context.Context, component string) error
	Update(ctx context.Context, appearance Appearance) error
	Destroy() error
}

type SDK interface {
	Init(opts Options) (Instance, error)
}

// SessionCreator is the backend session endpoint.
type SessionCreator interface {
	CreateSession(ctx context.Context, userID string) (*domain.EmbeddableSession, error)
}

// StateSource exposes the console state at call time.
type StateSource interface {
	Get() state.State
}

// Binder owns the single SDK instance of a console session and keeps it bound to at most one user.
type Binder struct {
	sdk      SDK
	sessions SessionCreator
	state    StateSource
	logger   *zap.Logger

	mu          sync.Mutex
	instance    Instance
	boundUserID string
}

func NewBinder(sdk SDK, sessions SessionCreator, st StateSource, logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{
		sdk:      sdk,
		sessions: sessions,
		state:    st,
		logger:   logger,
	}
}

// Initialize returns the instance bound to the active user, creating it if needed.
// An instance bound to another user is destroyed first.
func (b *Binder) Initialize(ctx context.Context) (Instance, error) {
	current := b.state.Get()
	if current.ActiveUserID == "" {
		return nil, ErrNoActiveUser
	}
	if b.sdk == nil {
		return nil, ErrSDKUnavailable
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.instance != nil && b.boundUserID != current.ActiveUserID {
		b.destroyLocked()
	}
	if b.instance != nil {
		return b.instance, nil
	}

	inst, err := b.sdk.Init(Options{
		FetchSessionID: b.fetchSessionID,
		Fonts:          []Font{{CSSSrc: FontCSS}},
		Appearance:     AppearanceFor(current.Dark),
	})
	if err != nil {
		return nil, err
	}

	b.instance = inst
	b.boundUserID = current.ActiveUserID
	b.logger.Debug("embeddables initialized", zap.String("user_id", b.boundUserID))
	return inst, nil
}

// OpenComponent opens the named widget for the active user. It fails with ErrUserMismatch,
// without opening anything, when the active user changed while the instance was being bound.
func (b *Binder) OpenComponent(ctx context.Context, component string) error {
	if b.state.Get().ActiveUserID == "" {
		return ErrNoActiveUser
	}

	inst, err := b.Initialize(ctx)
	if err != nil {
		return err
	}

	if b.BoundUserID() != b.state.Get().ActiveUserID {
		return ErrUserMismatch
	}
	return inst.Open(ctx, component)
}

// UpdateTheme pushes the current theme to a live instance.
func (b *Binder) UpdateTheme(ctx context.Context) error {
	b.mu.Lock()
	inst := b.instance
	b.mu.Unlock()
	if inst == nil {
		return nil
	}
	return inst.Update(ctx, AppearanceFor(b.state.Get().Dark))
}

// Destroy tears the instance down. SDK errors are swallowed so a user switch is never blocked.
func (b *Binder) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyLocked()
}

func (b *Binder) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instance != nil
}

func (b *Binder) BoundUserID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boundUserID
}

func (b *Binder) destroyLocked() {
	if b.instance != nil {
		if err := b.instance.Destroy(); err != nil {
			b.logger.Debug("embeddables destroy failed", zap.Error(err))
		}
	}
	b.instance = nil
	b.boundUserID = ""
}

// fetchSessionID reads the active user when the SDK asks, not when the instance was created.
func (b *Binder) fetchSessionID(ctx context.Context) (string, error) {
	userID := b.state.Get().ActiveUserID
	if userID == "" {
		return "", ErrNoActiveUser
	}
	session, err := b.sessions.CreateSession(ctx, userID)
	if err != nil {
		return "", err
	}
	return session.SessionID, nil
}
