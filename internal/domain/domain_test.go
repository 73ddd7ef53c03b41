package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCoin(t *testing.T) {
	for _, in := range []string{"btc", "BTC", "Btc", " bTc "} {
		assert.Equal(t, CoinBTC, NormalizeCoin(in), in)
	}
	assert.True(t, SupportedCoin(NormalizeCoin("eth")))
	assert.False(t, SupportedCoin(NormalizeCoin("ltc")))
}

func TestActivityLabels(t *testing.T) {
	tests := []struct {
		in    string
		key   string
		title string
	}{
		{in: "deposit", key: "deposit", title: "Deposit"},
		{in: "WITHDRAWAL", key: "withdrawal", title: "Withdrawal"},
		{in: "Reward", key: "reward", title: "Reward"},
		{in: "", key: "", title: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, ActivityKeyFor(tt.in))
		assert.Equal(t, tt.title, TitleFor(tt.in))
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("root"))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{in: "", want: StatusCompleted, valid: true},
		{in: " Pending ", want: StatusPending, valid: true},
		{in: "FAILED", want: StatusFailed, valid: true},
		{in: "bogus", want: "bogus", valid: false},
	}
	for _, tt := range tests {
		got := NormalizeStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.valid, ValidStatus(got), tt.in)
	}
}
