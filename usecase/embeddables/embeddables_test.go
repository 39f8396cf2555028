package embeddables

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/internal/config"
	"github.com/fastygo/embeddables/repository"
)

type fakePlatform struct {
	sessionCalls  int
	childPages    []domain.Page
	childErr      error
	childRequests []repository.PageRequest
	referral      []domain.User
	referralErr   error
	sessionErr    error
	lastSession   domain.SessionRequest
}

func (f *fakePlatform) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.EmbeddableSession, error) {
	f.sessionCalls++
	f.lastSession = req
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &domain.EmbeddableSession{SessionID: "sess_" + req.UserID, Raw: []byte(`{"session_id":"sess_` + req.UserID + `"}`)}, nil
}

func (f *fakePlatform) ListChildUsers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	f.childRequests = append(f.childRequests, page)
	if f.childErr != nil {
		return nil, f.childErr
	}
	idx := len(f.childRequests) - 1
	if idx >= len(f.childPages) {
		return &domain.Page{}, nil
	}
	p := f.childPages[idx]
	return &p, nil
}

func (f *fakePlatform) ListReferralCustomers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	if f.referralErr != nil {
		return nil, f.referralErr
	}
	return &domain.Page{Users: f.referral}, nil
}

type fakeAudit struct {
	entries []repository.SessionAuditEntry
}

func (a *fakeAudit) Record(ctx context.Context, entry repository.SessionAuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

type fakeCache struct {
	stored *domain.Directory
	sets   int
}

func (c *fakeCache) Get(ctx context.Context) (*domain.Directory, error) { return c.stored, nil }

func (c *fakeCache) Set(ctx context.Context, dir *domain.Directory) error {
	c.sets++
	c.stored = dir
	return nil
}

var validSettings = config.EasyPostConfig{APIKey: "EZTK", OriginHost: "localhost", PaginateChildren: true}

func users(prefix string, n int) []domain.User {
	out := make([]domain.User, n)
	for i := range out {
		out[i] = domain.User{ID: fmt.Sprintf("%s_%03d", prefix, i)}
	}
	return out
}

func TestCreateSessionRequiresUserID(t *testing.T) {
	platform := &fakePlatform{}
	uc := New(platform, validSettings, nil, nil, nil)

	for _, id := range []string{"", "   "} {
		_, err := uc.CreateSession(context.Background(), id)
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		assert.Contains(t, err.Error(), "user_id")
	}
	assert.Zero(t, platform.sessionCalls)
}

func TestCreateSessionRejectsMisconfiguration(t *testing.T) {
	tests := []struct {
		name     string
		settings config.EasyPostConfig
		code     domain.ErrorCode
	}{
		{name: "missing api key", settings: config.EasyPostConfig{OriginHost: "localhost"}, code: domain.ErrCodeMissingAPIKey},
		{name: "missing origin host", settings: config.EasyPostConfig{APIKey: "EZTK"}, code: domain.ErrCodeMissingOriginHost},
		{name: "origin host with scheme", settings: config.EasyPostConfig{APIKey: "EZTK", OriginHost: "https://example.com"}, code: domain.ErrCodeInvalidOriginHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &fakePlatform{}
			uc := New(platform, tt.settings, nil, nil, nil)

			_, err := uc.CreateSession(context.Background(), "user_1")
			assert.True(t, domain.IsDomainError(err, tt.code))
			assert.Zero(t, platform.sessionCalls)
		})
	}
}

func TestCreateSessionForwardsOriginHostAndAudits(t *testing.T) {
	platform := &fakePlatform{}
	audit := &fakeAudit{}
	uc := New(platform, validSettings, nil, audit, nil)

	session, err := uc.CreateSession(context.Background(), " user_1 ")
	require.NoError(t, err)

	assert.Equal(t, "sess_user_1", session.SessionID)
	assert.Equal(t, domain.SessionRequest{UserID: "user_1", OriginHost: "localhost"}, platform.lastSession)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, http.StatusOK, audit.entries[0].Status)
}

func TestCreateSessionAuditsUpstreamStatus(t *testing.T) {
	platform := &fakePlatform{sessionErr: domain.NewUpstreamError(http.StatusNotFound, "not found", nil)}
	audit := &fakeAudit{}
	uc := New(platform, validSettings, nil, audit, nil)

	_, err := uc.CreateSession(context.Background(), "user_1")
	require.Error(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, http.StatusNotFound, audit.entries[0].Status)
	assert.Equal(t, string(domain.ErrCodeUpstream), audit.entries[0].Code)
}

func TestListChildUsersPaginates(t *testing.T) {
	platform := &fakePlatform{childPages: []domain.Page{
		{Users: users("a", 100), HasMore: true},
		{Users: users("b", 100), HasMore: true},
		{Users: users("c", 40), HasMore: false},
	}}
	uc := New(platform, validSettings, nil, nil, nil)

	got, err := uc.ListChildUsers(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, got, 240)
	assert.Equal(t, "a_000", got[0].ID)
	assert.Equal(t, "b_000", got[100].ID)
	assert.Equal(t, "c_039", got[239].ID)

	require.Len(t, platform.childRequests, 3)
	assert.Equal(t, "", platform.childRequests[0].AfterID)
	assert.Equal(t, "a_099", platform.childRequests[1].AfterID)
	assert.Equal(t, "b_099", platform.childRequests[2].AfterID)
	for _, req := range platform.childRequests {
		assert.Equal(t, PageSize, req.PageSize)
	}
}

func TestListChildUsersStopsOnEmptyPage(t *testing.T) {
	platform := &fakePlatform{childPages: []domain.Page{
		{Users: users("a", 2), HasMore: true},
		{HasMore: true},
	}}
	uc := New(platform, validSettings, nil, nil, nil)

	got, err := uc.ListChildUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, platform.childRequests, 2)
}

func TestListChildUsersSinglePage(t *testing.T) {
	platform := &fakePlatform{childPages: []domain.Page{{Users: users("a", 100), HasMore: true}}}
	uc := New(platform, validSettings, nil, nil, nil)

	got, err := uc.ListChildUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, got, 100)
	assert.Len(t, platform.childRequests, 1)
}

func TestDirectoryFallsBackWhenReferralFails(t *testing.T) {
	platform := &fakePlatform{
		childPages:  []domain.Page{{Users: users("a", 3)}},
		referralErr: errors.New("connection reset"),
	}
	uc := New(platform, validSettings, nil, nil, nil)

	dir := uc.Directory(context.Background())

	assert.Len(t, dir.Children, 3)
	require.Len(t, dir.ReferralCustomers, 1)
	assert.Equal(t, domain.DemoReferralCustomer(), dir.ReferralCustomers[0])
	require.Len(t, dir.Warnings, 1)
	assert.Equal(t, domain.WarningReferralFallback, dir.Warnings[0].Type)
}

func TestDirectoryFallsBackWhenReferralEmpty(t *testing.T) {
	platform := &fakePlatform{}
	uc := New(platform, validSettings, nil, nil, nil)

	dir := uc.Directory(context.Background())

	assert.Empty(t, dir.Children)
	assert.Len(t, dir.ReferralCustomers, 1)
	require.Len(t, dir.Warnings, 1)
	assert.Equal(t, domain.WarningReferralFallback, dir.Warnings[0].Type)
}

func TestDirectoryDegradesChildren(t *testing.T) {
	platform := &fakePlatform{
		childErr: domain.NewUpstreamError(http.StatusUnauthorized, "bad key", nil),
		referral: users("r", 2),
	}
	uc := New(platform, validSettings, nil, nil, nil)

	dir := uc.Directory(context.Background())

	assert.NotNil(t, dir.Children)
	assert.Empty(t, dir.Children)
	assert.Len(t, dir.ReferralCustomers, 2)
	require.Len(t, dir.Warnings, 1)
	assert.Equal(t, domain.WarningChildrenUnavailable, dir.Warnings[0].Type)
	assert.True(t, dir.Decentralized())
}

func TestDirectoryCachesOnlyCleanResults(t *testing.T) {
	cache := &fakeCache{}
	platform := &fakePlatform{referral: users("r", 1)}
	uc := New(platform, validSettings, cache, nil, nil)

	first := uc.Directory(context.Background())
	assert.Equal(t, 1, cache.sets)

	platform.referral = nil
	second := uc.Directory(context.Background())
	assert.Same(t, first, second)

	skipped := &fakeCache{}
	degraded := New(&fakePlatform{}, validSettings, skipped, nil, nil)
	dir := degraded.Directory(context.Background())
	assert.NotEmpty(t, dir.Warnings)
	assert.Zero(t, skipped.sets)
}
