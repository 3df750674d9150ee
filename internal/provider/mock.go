package provider

import (
	"context"
	"time"

	"StockRadar/internal/model"
	"StockRadar/internal/resolver"
)

// MockProvider returns controllable fixed data for development and
// testing. A non-nil error in Errs[kind] fails that kind's calls; Latency
// delays every call.
type MockProvider struct {
	Bars      []model.DailyBar
	Quote     *model.Quote
	Fund      *model.Fundamentals
	Macro     *model.MacroSnapshot
	NewsItems []model.NewsItem
	Anns      []model.Announcement
	Flows     []model.MoneyflowRow
	HolderSet []model.HolderRow
	Margins   []model.MarginRow
	Divs      []model.DividendRow

	Inst *resolver.Instrument

	Errs    map[model.ResourceType]error
	Latency time.Duration
}

// ResolveName returns the fixture instrument regardless of keyword.
func (m *MockProvider) ResolveName(_ context.Context, _ string) (*resolver.Instrument, error) {
	if m.Inst == nil {
		return nil, ErrNotFound
	}
	return m.Inst, nil
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) stall(ctx context.Context, kind model.ResourceType) error {
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := m.Errs[kind]; err != nil {
		return err
	}
	return nil
}

func (m *MockProvider) DailyBars(ctx context.Context, _, _, _ string) ([]model.DailyBar, error) {
	if err := m.stall(ctx, model.ResDaily); err != nil {
		return nil, err
	}
	return m.Bars, nil
}

func (m *MockProvider) RealtimeQuote(ctx context.Context, _ string) (*model.Quote, error) {
	if err := m.stall(ctx, model.ResStockRealtime); err != nil {
		return nil, err
	}
	return m.Quote, nil
}

func (m *MockProvider) Fundamentals(ctx context.Context, _ string) (*model.Fundamentals, error) {
	if err := m.stall(ctx, model.ResFinancials); err != nil {
		return nil, err
	}
	return m.Fund, nil
}

func (m *MockProvider) MacroSnapshot(ctx context.Context) (*model.MacroSnapshot, error) {
	if err := m.stall(ctx, model.ResMacroSnap); err != nil {
		return nil, err
	}
	return m.Macro, nil
}

func (m *MockProvider) News(ctx context.Context, _ string, _ int) ([]model.NewsItem, error) {
	if err := m.stall(ctx, model.ResNews); err != nil {
		return nil, err
	}
	return m.NewsItems, nil
}

func (m *MockProvider) Announcements(ctx context.Context, _ string, _ int) ([]model.Announcement, error) {
	if err := m.stall(ctx, model.ResAnnouncements); err != nil {
		return nil, err
	}
	return m.Anns, nil
}

func (m *MockProvider) Moneyflow(ctx context.Context, _, _, _ string) ([]model.MoneyflowRow, error) {
	if err := m.stall(ctx, model.ResMoneyflow); err != nil {
		return nil, err
	}
	return m.Flows, nil
}

func (m *MockProvider) Holders(ctx context.Context, _ string) ([]model.HolderRow, error) {
	if err := m.stall(ctx, model.ResHolders); err != nil {
		return nil, err
	}
	return m.HolderSet, nil
}

func (m *MockProvider) MarginDetail(ctx context.Context, _ string) ([]model.MarginRow, error) {
	if err := m.stall(ctx, model.ResMargin); err != nil {
		return nil, err
	}
	return m.Margins, nil
}

func (m *MockProvider) Dividends(ctx context.Context, _ string) ([]model.DividendRow, error) {
	if err := m.stall(ctx, model.ResDividend); err != nil {
		return nil, err
	}
	return m.Divs, nil
}
