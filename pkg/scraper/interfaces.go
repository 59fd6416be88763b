package scraper

import (
	"context"

	"pinscraper/pkg/pinterest"
)

// PinterestClient defines the search surface the orchestrator needs
type PinterestClient interface {
	VerifySession(ctx context.Context) (*pinterest.UserData, error)
	CollectPins(ctx context.Context, opts pinterest.CollectOptions) (*pinterest.CollectResult, error)
}
