package repository

import (
	"context"

	"github.com/fastygo/embeddables/domain"
)

// PageRequest addresses one page of a cursor-paginated listing.
type PageRequest struct {
	PageSize int
	AfterID  string
}

// PlatformRepository is the shipping platform as seen by the use cases.
type PlatformRepository interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.EmbeddableSession, error)
	ListChildUsers(ctx context.Context, page PageRequest) (*domain.Page, error)
	ListReferralCustomers(ctx context.Context, page PageRequest) (*domain.Page, error)
}
