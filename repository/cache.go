package repository

import (
	"context"

	"github.com/fastygo/embeddables/domain"
)

// DirectoryCache stores combined directory responses for a short time.
// Get returns (nil, nil) on a miss.
type DirectoryCache interface {
	Get(ctx context.Context) (*domain.Directory, error)
	Set(ctx context.Context, dir *domain.Directory) error
}
