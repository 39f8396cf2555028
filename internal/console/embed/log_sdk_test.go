package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/embeddables/internal/console/state"
)

func TestLogSDKOpenFetchesSessionForActiveUser(t *testing.T) {
	var opened []Opened
	sessions := &fakeSessions{}
	store := newStore(t, "user_a")
	b := NewBinder(NewLogSDK(nil, func(o Opened) { opened = append(opened, o) }), sessions, store, nil)

	require.NoError(t, b.OpenComponent(context.Background(), "manage-carriers"))

	require.Len(t, opened, 1)
	assert.Equal(t, "manage-carriers", opened[0].Component)
	assert.Equal(t, "sess_user_a", opened[0].SessionID)
	assert.Equal(t, AppearanceFor(false), opened[0].Appearance)
	assert.Equal(t, []string{"user_a"}, sessions.users)
}

func TestLogSDKAppliesThemeUpdates(t *testing.T) {
	var opened []Opened
	store := newStore(t, "user_a")
	b := NewBinder(NewLogSDK(nil, func(o Opened) { opened = append(opened, o) }), &fakeSessions{}, store, nil)
	ctx := context.Background()

	_, err := b.Initialize(ctx)
	require.NoError(t, err)
	_, err = store.Save(state.SetDark(true))
	require.NoError(t, err)
	require.NoError(t, b.UpdateTheme(ctx))
	require.NoError(t, b.OpenComponent(ctx, "manage-billing"))

	require.Len(t, opened, 1)
	assert.Equal(t, AppearanceFor(true), opened[0].Appearance)
}

func TestLogSDKInstanceUnusableAfterDestroy(t *testing.T) {
	inst, err := NewLogSDK(nil, nil).Init(Options{FetchSessionID: func(context.Context) (string, error) { return "sess", nil }})
	require.NoError(t, err)

	require.NoError(t, inst.Destroy())
	assert.ErrorIs(t, inst.Open(context.Background(), "manage-reports"), ErrInstanceDestroyed)
	assert.ErrorIs(t, inst.Destroy(), ErrInstanceDestroyed)
}

func TestLogSDKRequiresSessionFetcher(t *testing.T) {
	_, err := NewLogSDK(nil, nil).Init(Options{})
	assert.ErrorIs(t, err, ErrSDKUnavailable)
}
