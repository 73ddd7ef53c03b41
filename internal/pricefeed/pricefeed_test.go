package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	chartStatus  int
	simpleStatus int
	calls        atomic.Int32
}

func (u *upstream) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/simple/price":
			if u.simpleStatus != 0 {
				w.WriteHeader(u.simpleStatus)
				return
			}
			q := r.URL.Query()
			cur := q.Get("vs_currencies")
			var parts []string
			for _, id := range strings.Split(q.Get("ids"), ",") {
				field := `"` + cur + `":` + map[string]string{"bitcoin": "65000.5", "ethereum": "3000", "litecoin": "80"}[id]
				if q.Get("include_24hr_change") == "true" {
					field += `,"` + cur + `_24h_change":-1.5`
				}
				parts = append(parts, `"`+id+`":{`+field+`}`)
			}
			_, _ = w.Write([]byte("{" + strings.Join(parts, ",") + "}"))
		case strings.HasSuffix(r.URL.Path, "/market_chart"):
			if u.chartStatus != 0 {
				w.WriteHeader(u.chartStatus)
				return
			}
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			_, _ = w.Write([]byte(`{"prices":[[1700000000000,1.5],[1700003600000,2.5]],"market_caps":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newClient(t *testing.T, u *upstream) *Client {
	srv := httptest.NewServer(u.handler(t))
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestSnapshot(t *testing.T) {
	u := &upstream{}
	c := newClient(t, u)

	payload, err := c.Snapshot(context.Background(), "usd")
	require.NoError(t, err)
	assert.EqualValues(t, 4, u.calls.Load())

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Len(t, got, 3)
	assert.Equal(t, 65000.5, got["bitcoin"]["usd"])
	assert.Equal(t, -1.5, got["ethereum"]["usd_24h_change"])
	assert.Equal(t, []any{1.5, 2.5}, got["litecoin"]["chartData"])
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		up   *upstream
		want error
	}{
		{name: "chart rate limited", up: &upstream{chartStatus: http.StatusTooManyRequests}, want: ErrRateLimited},
		{name: "simple price rate limited", up: &upstream{simpleStatus: http.StatusTooManyRequests}, want: ErrRateLimited},
		{name: "server error", up: &upstream{chartStatus: http.StatusBadGateway}, want: ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(t, tt.up).Snapshot(context.Background(), "usd")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSnapshot_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL, time.Second).Snapshot(context.Background(), "usd")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUnitPrices(t *testing.T) {
	c := newClient(t, &upstream{})

	prices, err := c.UnitPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "65000.5", prices["BTC"].String())
	assert.Equal(t, "3000", prices["ETH"].String())
}
