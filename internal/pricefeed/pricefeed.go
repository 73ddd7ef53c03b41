// Package pricefeed talks to the CoinGecko public API.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrRateLimited = errors.New("price feed rate limit reached")
	ErrUpstream    = errors.New("price feed unavailable")
)

// SnapshotCoins are the coin ids included in a price snapshot.
var SnapshotCoins = []string{"bitcoin", "ethereum", "litecoin"}

// walletCoins maps wallet symbols to feed ids.
var walletCoins = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

const chartDays = "7"

type Client struct {
	http *resty.Client
}

// New builds a client for baseURL (e.g. https://api.coingecko.com/api/v3).
// Every request is bounded by timeout and never retried.
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// SimplePrices returns the raw price fields per coin id, e.g.
// {"bitcoin": {"usd": 65000, "usd_24h_change": -1.2}}.
func (c *Client) SimplePrices(ctx context.Context, ids []string, currency string, with24hChange bool) (map[string]map[string]json.RawMessage, error) {
	out := map[string]map[string]json.RawMessage{}
	params := map[string]string{
		"ids":           strings.Join(ids, ","),
		"vs_currencies": currency,
	}
	if with24hChange {
		params["include_24hr_change"] = "true"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		ForceContentType("application/json").
		SetResult(&out).
		Get("/simple/price")
	if err := check("simple price", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

type marketChart struct {
	Prices [][]float64 `json:"prices"`
}

// MarketChart returns the price series of a coin over the last days, oldest first.
func (c *Client) MarketChart(ctx context.Context, id, currency, days string) ([]float64, error) {
	var chart marketChart
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParams(map[string]string{"vs_currency": currency, "days": days}).
		ForceContentType("application/json").
		SetResult(&chart).
		Get("/coins/{id}/market_chart")
	if err := check("market chart "+id, resp, err); err != nil {
		return nil, err
	}
	series := make([]float64, 0, len(chart.Prices))
	for _, point := range chart.Prices {
		if len(point) < 2 {
			continue
		}
		series = append(series, point[1]) // [timestamp, price]
	}
	return series, nil
}

// Snapshot fetches spot prices with 24h change plus a 7-day chart for every
// snapshot coin, all concurrently. Any single failure fails the snapshot.
// The result is the JSON object {coin: {price fields..., "chartData": [...]}}.
func (c *Client) Snapshot(ctx context.Context, currency string) (json.RawMessage, error) {
	g, gctx := errgroup.WithContext(ctx)

	var base map[string]map[string]json.RawMessage
	g.Go(func() error {
		var err error
		base, err = c.SimplePrices(gctx, SnapshotCoins, currency, true)
		return err
	})
	charts := make([][]float64, len(SnapshotCoins))
	for i, id := range SnapshotCoins {
		g.Go(func() error {
			series, err := c.MarketChart(gctx, id, currency, chartDays)
			charts[i] = series
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make(map[string]map[string]any, len(SnapshotCoins))
	for i, id := range SnapshotCoins {
		entry := map[string]any{}
		for field, v := range base[id] {
			entry[field] = v
		}
		entry["chartData"] = charts[i]
		combined[id] = entry
	}
	payload, err := json.Marshal(combined)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return payload, nil
}

// UnitPrices returns the live USD price of one BTC and one ETH keyed by symbol.
func (c *Client) UnitPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(walletCoins))
	for _, id := range walletCoins {
		ids = append(ids, id)
	}
	raw, err := c.SimplePrices(ctx, ids, "usd", false)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(walletCoins))
	for symbol, id := range walletCoins {
		field, ok := raw[id]["usd"]
		if !ok {
			return nil, fmt.Errorf("%w: no usd price for %s", ErrUpstream, id)
		}
		var price decimal.Decimal
		if err := json.Unmarshal(field, &price); err != nil {
			return nil, fmt.Errorf("%w: bad usd price for %s: %v", ErrUpstream, id, err)
		}
		prices[symbol] = price
	}
	return prices, nil
}

func check(call string, resp *resty.Response, err error) error {
	if err != nil {
		logrus.WithError(err).WithField("call", call).Warn("price feed request failed")
		return fmt.Errorf("%w: %s: %v", ErrUpstream, call, err)
	}
	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, call)
	case resp.IsError():
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, call, resp.StatusCode())
	}
	return nil
}
