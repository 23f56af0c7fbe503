package swap

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/swapquote/business/swap/app"
	swapDI "github.com/fd1az/swapquote/business/swap/di"
	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/config"
	"github.com/fd1az/swapquote/internal/health"
	"github.com/fd1az/swapquote/internal/logger"
	"github.com/fd1az/swapquote/internal/monolith"
)

var karKUSD = domain.MustParseTradingPair("KAR/KUSD")

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "swapquote"},
		Chain: config.ChainConfig{Name: "karura", DecimalExponent: 12, EnabledPairs: []string{"KAR/KUSD"}},
		Fee:   config.FeeConfig{Numerator: 3, Denominator: 1000},
		Quote: config.QuoteConfig{DisplayPrecision: 6, SlippageBps: 50, PrecisionPolicy: "reject"},
		Snapshot: config.SnapshotConfig{
			CommitInterval: config.MinCommitInterval,
			StaleAfter:     time.Hour,
		},
	}
}

func TestStaticSnapshot(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	snap, err := StaticSnapshot(cfg, karKUSD, "1000000000000000, 2000000000000000", now)
	require.NoError(t, err)
	require.Len(t, snap.Pools, 1)
	assert.Equal(t, "1000000000000000", snap.Pools[0].Reserve(0).String())
	assert.Equal(t, "2000000000000000", snap.Pools[0].Reserve(1).String())
	assert.Equal(t, now, snap.ObservedAt)

	// reserves follow the requested order and are re-aligned to the canonical pair
	rev, err := StaticSnapshot(cfg, karKUSD.Swapped(), "2000000000000000,1000000000000000", now)
	require.NoError(t, err)
	assert.True(t, rev.Pools[0].Pair.Equals(karKUSD))
	assert.Equal(t, "1000000000000000", rev.Pools[0].Reserve(0).String())
	assert.Equal(t, "2000000000000000", rev.Pools[0].Reserve(1).String())
}

func TestStaticSnapshot_Errors(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		pair     domain.TradingPair
		reserves string
		code     apperror.Code
	}{
		{"pair not enabled", domain.MustParseTradingPair("DOT/KAR"), "1,2", apperror.CodePairNotEnabled},
		{"one reserve", karKUSD, "1", apperror.CodeInvalidInput},
		{"not a number", karKUSD, "1,abc", apperror.CodeInvalidNumericFormat},
		{"negative", karKUSD, "-1,2", apperror.CodeNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StaticSnapshot(cfg, tt.pair, tt.reserves, time.Now())
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Quote.PrecisionPolicy = "truncate"
	cfg.Quote.Abbreviate = true

	svcCfg, err := ServiceConfig(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 12, svcCfg.Exponent)
	assert.EqualValues(t, "truncate", svcCfg.Policy)
	assert.True(t, svcCfg.Abbreviate)

	cfg.Quote.PrecisionPolicy = "round"
	_, err = ServiceConfig(cfg)
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
}

func TestServiceConfig_ExponentOutOfRange(t *testing.T) {
	for _, exp := range []int{-1, 37, 268} {
		cfg := testConfig()
		cfg.Chain.DecimalExponent = exp
		_, err := ServiceConfig(cfg)
		assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError), "exponent %d: %v", exp, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidExponent), "exponent %d: %v", exp, err)
	}
}

func TestEnabledPairsAndFee_Invalid(t *testing.T) {
	cfg := testConfig()
	cfg.Chain.EnabledPairs = []string{"KAR"}
	_, err := EnabledPairs(cfg)
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPair))

	cfg = testConfig()
	cfg.Fee = config.FeeConfig{Numerator: 1, Denominator: 0}
	_, err = FeeRate(cfg)
	assert.True(t, apperror.HasCode(err, apperror.CodeZeroFeeDenominator))
}

func TestModule_OneShotQuote(t *testing.T) {
	ctx := context.Background()
	mono := monolith.New(testConfig(), logger.Discard(), nil)
	mod := &Module{}

	require.NoError(t, mono.RegisterModules(mod))
	require.NoError(t, mono.StartModules(ctx, mod))

	snap, err := StaticSnapshot(mono.Config(), karKUSD, "1000000000000000,2000000000000000", time.Now())
	require.NoError(t, err)

	res, err := swapDI.GetQuoteService(mono.Services()).Quote(ctx, snap, app.QuoteRequest{
		Pair: karKUSD, Side: domain.SideSupply, Amount: "10", Tolerance: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "19743160687941", res.Quote.Target.String())
}

func TestModule_WatchFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feedLine := `{"block":7,"fee":{"numerator":3,"denominator":1000},"enabled_pairs":["KAR/KUSD"],` +
		`"pools":[{"pair":"KAR/KUSD","reserves":["1000000000000000","2000000000000000"]}]}`

	var out bytes.Buffer
	hs := health.NewServer(0, "test", logger.Discard())
	mono := monolith.New(testConfig(), logger.Discard(), hs)
	mod := &Module{
		Request: app.QuoteRequest{Pair: karKUSD, Side: domain.SideSupply, Amount: "10", Tolerance: 50},
		Input:   strings.NewReader(feedLine + "\n"),
		Output:  &out,
	}

	require.NoError(t, mono.RegisterModules(mod))
	require.NoError(t, mono.StartModules(ctx, mod))

	watcher := swapDI.GetWatcher(mono.Services())
	require.NoError(t, watcher.Run(ctx))

	assert.Contains(t, out.String(), "19.74316 KUSD")
	assert.Contains(t, out.String(), "#7")

	healthy, msg := watcher.HealthCheck(ctx)
	assert.True(t, healthy)
	assert.Equal(t, "block 7", msg)
}
