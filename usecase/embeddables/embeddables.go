package embeddables

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/internal/config"
	"github.com/fastygo/embeddables/repository"
)

const (
	// PageSize is requested from every upstream listing.
	PageSize = 100
	// MaxPages bounds the child-user pagination loop.
	MaxPages = 1000
)

type UseCase struct {
	platform repository.PlatformRepository
	settings config.EasyPostConfig
	cache    repository.DirectoryCache
	audit    repository.SessionAudit
	logger   *zap.Logger
}

// New wires the session and directory proxies. cache and audit may be nil.
func New(
	platform repository.PlatformRepository,
	settings config.EasyPostConfig,
	cache repository.DirectoryCache,
	audit repository.SessionAudit,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		platform: platform,
		settings: settings,
		cache:    cache,
		audit:    audit,
		logger:   logger,
	}
}

// CreateSession requests an embeddable session for userID bound to the configured origin host.
func (uc *UseCase) CreateSession(ctx context.Context, userID string) (*domain.EmbeddableSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrMissingUserID
	}
	if err := uc.settings.Validate(); err != nil {
		uc.logger.Error("session request rejected, server misconfigured", zap.Error(err))
		return nil, err
	}

	session, err := uc.platform.CreateSession(ctx, domain.SessionRequest{
		UserID:     userID,
		OriginHost: uc.settings.OriginHost,
	})
	uc.record(ctx, userID, err)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListChildUsers returns the account's child users, following the cursor when all is set.
func (uc *UseCase) ListChildUsers(ctx context.Context, all bool) ([]domain.User, error) {
	if err := uc.settings.Validate(); err != nil {
		return nil, err
	}
	if !all {
		page, err := uc.platform.ListChildUsers(ctx, repository.PageRequest{PageSize: PageSize})
		if err != nil {
			return nil, err
		}
		return nonNil(page.Users), nil
	}

	users := []domain.User{}
	afterID := ""
	for i := 0; i < MaxPages; i++ {
		page, err := uc.platform.ListChildUsers(ctx, repository.PageRequest{PageSize: PageSize, AfterID: afterID})
		if err != nil {
			return nil, err
		}
		users = append(users, page.Users...)
		if !page.HasMore || len(page.Users) == 0 {
			break
		}
		afterID = page.Users[len(page.Users)-1].ID
	}
	return users, nil
}

// ListReferralCustomers returns the first page of referral customers.
func (uc *UseCase) ListReferralCustomers(ctx context.Context) ([]domain.User, error) {
	if err := uc.settings.Validate(); err != nil {
		return nil, err
	}
	page, err := uc.platform.ListReferralCustomers(ctx, repository.PageRequest{PageSize: PageSize})
	if err != nil {
		return nil, err
	}
	return nonNil(page.Users), nil
}

// Directory combines child users and referral customers. Sub-fetch failures never fail the call:
// children degrade to an empty list and referral customers to the demo record, each with a warning.
func (uc *UseCase) Directory(ctx context.Context) *domain.Directory {
	if cached := uc.cached(ctx); cached != nil {
		return cached
	}

	dir := &domain.Directory{
		Children:          []domain.User{},
		ReferralCustomers: []domain.User{},
		Warnings:          []domain.Warning{},
	}

	children, err := uc.ListChildUsers(ctx, uc.settings.PaginateChildren)
	if err != nil {
		uc.logger.Warn("child users unavailable", zap.Error(err))
		dir.Warn(domain.WarningChildrenUnavailable, "Failed to load child users: "+err.Error())
	} else {
		dir.Children = children
	}

	referral, err := uc.ListReferralCustomers(ctx)
	switch {
	case err != nil:
		uc.logger.Warn("referral customers unavailable, using demo data", zap.Error(err))
		dir.ReferralCustomers = []domain.User{domain.DemoReferralCustomer()}
		dir.Warn(domain.WarningReferralFallback, "Failed to load referral customers ("+err.Error()+"); showing demo referral customer")
	case len(referral) == 0:
		dir.ReferralCustomers = []domain.User{domain.DemoReferralCustomer()}
		dir.Warn(domain.WarningReferralFallback, "No referral customers found; showing demo referral customer")
	default:
		dir.ReferralCustomers = referral
	}

	if len(dir.Warnings) == 0 && uc.cache != nil {
		if err := uc.cache.Set(ctx, dir); err != nil {
			uc.logger.Warn("directory cache write failed", zap.Error(err))
		}
	}
	return dir
}

func (uc *UseCase) cached(ctx context.Context) *domain.Directory {
	if uc.cache == nil {
		return nil
	}
	dir, err := uc.cache.Get(ctx)
	if err != nil {
		uc.logger.Warn("directory cache read failed", zap.Error(err))
		return nil
	}
	return dir
}

func (uc *UseCase) record(ctx context.Context, userID string, err error) {
	if uc.audit == nil {
		return
	}
	entry := repository.SessionAuditEntry{
		UserID:    userID,
		Status:    http.StatusOK,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		entry.Status = http.StatusInternalServerError
		if dErr, ok := domain.AsError(err); ok {
			entry.Code = string(dErr.Code)
			if dErr.Status != 0 {
				entry.Status = dErr.Status
			}
		}
	}
	if auditErr := uc.audit.Record(ctx, entry); auditErr != nil {
		uc.logger.Warn("session audit write failed", zap.String("user_id", userID), zap.Error(auditErr))
	}
}

func nonNil(users []domain.User) []domain.User {
	if users == nil {
		return []domain.User{}
	}
	return users
}
