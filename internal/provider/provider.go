package provider

import (
	"context"
	"errors"

	"StockRadar/internal/model"
)

// Failure taxonomy for provider calls. Callers branch with errors.Is; the
// pipeline treats all of them as task-local failures.
var (
	ErrRateLimited      = errors.New("provider: rate limited")
	ErrPermissionDenied = errors.New("provider: permission denied")
	ErrNotFound         = errors.New("provider: not found")
	ErrTransient        = errors.New("provider: transient failure")
)

// Provider is the external market-data source. Every call is stateless
// and independently throttled by the caller.
type Provider interface {
	Name() string

	DailyBars(ctx context.Context, code, start, end string) ([]model.DailyBar, error)
	RealtimeQuote(ctx context.Context, code string) (*model.Quote, error)
	Fundamentals(ctx context.Context, code string) (*model.Fundamentals, error)
	MacroSnapshot(ctx context.Context) (*model.MacroSnapshot, error)
	News(ctx context.Context, code string, hours int) ([]model.NewsItem, error)
	Announcements(ctx context.Context, code string, limit int) ([]model.Announcement, error)
	Moneyflow(ctx context.Context, code, start, end string) ([]model.MoneyflowRow, error)
	Holders(ctx context.Context, code string) ([]model.HolderRow, error)
	MarginDetail(ctx context.Context, code string) ([]model.MarginRow, error)
	Dividends(ctx context.Context, code string) ([]model.DividendRow, error)
}
