package embed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrInstanceDestroyed is returned by a LogSDK instance used after Destroy.
var ErrInstanceDestroyed = errors.New("embeddables instance destroyed")

// Opened is one widget open handled by a LogSDK instance.
type Opened struct {
	Component  string
	SessionID  string
	Appearance Appearance
}

// LogSDK stands in for the browser widget SDK outside a browser. Opening a component
// resolves a session id through the backend and records what would be rendered.
type LogSDK struct {
	logger *zap.Logger
	notify func(Opened)
}

// NewLogSDK builds the SDK. notify, when set, is called after each successful open.
func NewLogSDK(logger *zap.Logger, notify func(Opened)) *LogSDK {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSDK{logger: logger, notify: notify}
}

func (s *LogSDK) Init(opts Options) (Instance, error) {
	if opts.FetchSessionID == nil {
		return nil, ErrSDKUnavailable
	}
	fonts := make([]string, 0, len(opts.Fonts))
	for _, f := range opts.Fonts {
		fonts = append(fonts, f.CSSSrc)
	}
	s.logger.Debug("embeddables sdk initialized", zap.Strings("fonts", fonts))
	return &logInstance{sdk: s, opts: opts, appearance: opts.Appearance}, nil
}

type logInstance struct {
	sdk  *LogSDK
	opts Options

	mu         sync.Mutex
	appearance Appearance
	destroyed  bool
}

func (i *logInstance) Open(ctx context.Context, component string) error {
	i.mu.Lock()
	destroyed, appearance := i.destroyed, i.appearance
	i.mu.Unlock()
	if destroyed {
		return ErrInstanceDestroyed
	}

	sessionID, err := i.opts.FetchSessionID(ctx)
	if err != nil {
		return err
	}

	opened := Opened{
		Component:  component,
		SessionID:  sessionID,
		Appearance: appearance,
	}
	i.sdk.logger.Info("embeddable opened",
		zap.String("component", component),
		zap.String("session_id", sessionID),
		zap.String("modal_z_index", appearance.ModalZIndex))
	if i.sdk.notify != nil {
		i.sdk.notify(opened)
	}
	return nil
}

func (i *logInstance) Update(_ context.Context, appearance Appearance) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ErrInstanceDestroyed
	}
	i.appearance = appearance
	return nil
}

func (i *logInstance) Destroy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ErrInstanceDestroyed
	}
	i.destroyed = true
	i.sdk.logger.Debug("embeddables sdk destroyed")
	return nil
}
