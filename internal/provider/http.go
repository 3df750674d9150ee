package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockRadar/internal/model"
	"StockRadar/internal/resolver"
)

// HTTPProvider implements Provider against a REST gateway exposing the
// data feed. Authentication is a bearer token; an optional proxy is
// honored for deployments behind one.
type HTTPProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with optional proxy support.
func NewHTTPProvider(baseURL, token, proxyURL string) *HTTPProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// get fetches endpoint and decodes the JSON body into out. HTTP statuses
// are mapped onto the provider failure taxonomy.
func (p *HTTPProvider) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, endpoint)
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, endpoint)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (p *HTTPProvider) DailyBars(ctx context.Context, code, start, end string) ([]model.DailyBar, error) {
	var bars []model.DailyBar
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/daily?code=%s&start=%s&end=%s",
		p.BaseURL, url.QueryEscape(code), start, end), &bars)
	return bars, err
}

func (p *HTTPProvider) RealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	var q model.Quote
	if err := p.get(ctx, fmt.Sprintf("%s/api/v1/quote?code=%s", p.BaseURL, url.QueryEscape(code)), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (p *HTTPProvider) Fundamentals(ctx context.Context, code string) (*model.Fundamentals, error) {
	var f model.Fundamentals
	if err := p.get(ctx, fmt.Sprintf("%s/api/v1/fundamentals?code=%s", p.BaseURL, url.QueryEscape(code)), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (p *HTTPProvider) MacroSnapshot(ctx context.Context) (*model.MacroSnapshot, error) {
	var m model.MacroSnapshot
	if err := p.get(ctx, p.BaseURL+"/api/v1/macro", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *HTTPProvider) News(ctx context.Context, code string, hours int) ([]model.NewsItem, error) {
	var items []model.NewsItem
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/news?code=%s&hours=%d", p.BaseURL, url.QueryEscape(code), hours), &items)
	return items, err
}

func (p *HTTPProvider) Announcements(ctx context.Context, code string, limit int) ([]model.Announcement, error) {
	var anns []model.Announcement
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/announcements?code=%s&limit=%d", p.BaseURL, url.QueryEscape(code), limit), &anns)
	return anns, err
}

func (p *HTTPProvider) Moneyflow(ctx context.Context, code, start, end string) ([]model.MoneyflowRow, error) {
	var rows []model.MoneyflowRow
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/moneyflow?code=%s&start=%s&end=%s",
		p.BaseURL, url.QueryEscape(code), start, end), &rows)
	return rows, err
}

func (p *HTTPProvider) Holders(ctx context.Context, code string) ([]model.HolderRow, error) {
	var rows []model.HolderRow
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/holders?code=%s", p.BaseURL, url.QueryEscape(code)), &rows)
	return rows, err
}

func (p *HTTPProvider) MarginDetail(ctx context.Context, code string) ([]model.MarginRow, error) {
	var rows []model.MarginRow
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/margin?code=%s", p.BaseURL, url.QueryEscape(code)), &rows)
	return rows, err
}

func (p *HTTPProvider) Dividends(ctx context.Context, code string) ([]model.DividendRow, error) {
	var rows []model.DividendRow
	err := p.get(ctx, fmt.Sprintf("%s/api/v1/dividends?code=%s", p.BaseURL, url.QueryEscape(code)), &rows)
	return rows, err
}

// ResolveName searches the provider's instrument directory by company
// name or keyword.
func (p *HTTPProvider) ResolveName(ctx context.Context, keyword string) (*resolver.Instrument, error) {
	var inst resolver.Instrument
	if err := p.get(ctx, fmt.Sprintf("%s/api/v1/instrument/search?q=%s", p.BaseURL, url.QueryEscape(keyword)), &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}
