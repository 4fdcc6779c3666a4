package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBasisPoints(t *testing.T) {
	allocation := map[string]float64{
		"tether":   44.44,
		"bitcoin":  33.33,
		"ethereum": 22.23,
	}

	ids, points, err := ToBasisPoints(allocation)
	require.NoError(t, err)

	// Sorted by asset id, deterministic across runs.
	assert.Equal(t, []string{"bitcoin", "ethereum", "tether"}, ids)
	assert.Equal(t, int64(3333), points[0].Int64())
	assert.Equal(t, int64(2223), points[1].Int64())
	assert.Equal(t, int64(4444), points[2].Int64())
}

func TestToBasisPointsRejectsBadSum(t *testing.T) {
	// 99.99% -> 9,999 basis points, one short.
	allocation := map[string]float64{
		"bitcoin":  50.0,
		"ethereum": 49.99,
	}

	_, _, err := ToBasisPoints(allocation)
	assert.ErrorIs(t, err, ErrBadAllocationSum)
}

func TestToBasisPointsRejectsNegative(t *testing.T) {
	_, _, err := ToBasisPoints(map[string]float64{"bitcoin": 110, "ethereum": -10})
	assert.Error(t, err)
}

func TestStoreRejectsBadSumBeforeNetwork(t *testing.T) {
	// No RPC configured: any network touch would fail loudly, so a clean
	// validation error proves the check happens first.
	store, err := NewPortfolioStore(Config{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = store.StorePortfolio(context.Background(), map[string]float64{
		"bitcoin":  50.0,
		"ethereum": 49.99,
	}, 10000, "medium", []string{"Layer 1"})
	assert.ErrorIs(t, err, ErrBadAllocationSum)
}

func TestDemoModeIsDeterministic(t *testing.T) {
	store, err := NewPortfolioStore(Config{}, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, store.DemoMode())

	allocation := map[string]float64{"bitcoin": 60, "ethereum": 40}

	first, err := store.StorePortfolio(context.Background(), allocation, 10000, "high", []string{"Layer 1"})
	require.NoError(t, err)
	second, err := store.StorePortfolio(context.Background(), allocation, 10000, "high", []string{"Layer 1"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, common.Hash{}, first)
}

func TestReadsRequireRPC(t *testing.T) {
	store, err := NewPortfolioStore(Config{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = store.PortfolioCount(context.Background(), store.From())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFallbackABI(t *testing.T) {
	parsed, err := loadABI("")
	require.NoError(t, err)

	assert.Contains(t, parsed.Methods, "storePortfolio")
	assert.Contains(t, parsed.Methods, "getPortfolio")
	assert.Contains(t, parsed.Methods, "getUserPortfolioCount")
}

func TestLoadABIFromMetadata(t *testing.T) {
	metadata := `{"output":{"abi":[
		{"inputs":[],"name":"ping","outputs":[],"stateMutability":"view","type":"function"}
	]}}`
	path := filepath.Join(t.TempDir(), "PortfolioStorage_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(metadata), 0o644))

	parsed, err := loadABI(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "ping")
	assert.NotContains(t, parsed.Methods, "storePortfolio")
}

func TestLoadABIMissingFileFallsBack(t *testing.T) {
	parsed, err := loadABI(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "storePortfolio")
}
