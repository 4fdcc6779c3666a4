package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	storeGasLimit = 500_000

	// defaultReceiptTimeout bounds how long StorePortfolio waits for a
	// transaction to be mined.
	defaultReceiptTimeout = 3 * time.Minute
)

var (
	// ErrBadAllocationSum is returned when the allocation does not
	// convert to exactly 10,000 basis points. Checked before any network
	// interaction.
	ErrBadAllocationSum = errors.New("chain: allocations must sum to exactly 100%")

	// ErrTxReverted is returned when a mined transaction has receipt
	// status 0.
	ErrTxReverted = errors.New("chain: transaction reverted")

	// ErrNotConfigured is returned by read methods when no RPC endpoint
	// is configured.
	ErrNotConfigured = errors.New("chain: rpc endpoint not configured")
)

// Config holds the blockchain wiring. Everything is optional: with no
// RPC URL or signing key the store runs in demo mode.
type Config struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	MetadataPath    string
	ReceiptTimeout  time.Duration
}

// PortfolioStore writes portfolio allocations to a pre-deployed
// storage contract and reads them back.
type PortfolioStore struct {
	client         *ethclient.Client
	contractABI    abi.ABI
	contract       common.Address
	key            *ecdsa.PrivateKey
	from           common.Address
	receiptTimeout time.Duration
	log            zerolog.Logger
}

// NewPortfolioStore connects to the configured RPC endpoint and loads
// the contract ABI. A missing RPC URL or signing key is not an error;
// the store then operates in demo mode.
func NewPortfolioStore(cfg Config, log zerolog.Logger) (*PortfolioStore, error) {
	contractABI, err := loadABI(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	store := &PortfolioStore{
		contractABI:    contractABI,
		receiptTimeout: cfg.ReceiptTimeout,
		log:            log,
	}
	if store.receiptTimeout <= 0 {
		store.receiptTimeout = defaultReceiptTimeout
	}
	if cfg.ContractAddress != "" {
		store.contract = common.HexToAddress(cfg.ContractAddress)
	}

	if cfg.RPCURL != "" {
		client, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("chain: dial rpc: %w", err)
		}
		store.client = client
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("chain: parse signing key: %w", err)
		}
		store.key = key
		store.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	if store.DemoMode() {
		log.Warn().Msg("no rpc endpoint or signing key configured, portfolio storage runs in demo mode")
	}
	return store, nil
}

// DemoMode reports whether submissions are simulated locally instead of
// hitting the network.
func (s *PortfolioStore) DemoMode() bool {
	return s.client == nil || s.key == nil
}

// From returns the signing address, or the zero address in demo mode.
func (s *PortfolioStore) From() common.Address {
	return s.from
}

// ToBasisPoints converts an allocation map (asset id -> percentage) to
// parallel asset and basis-point slices, sorted by asset id so the
// encoding is deterministic. Fractions below one basis point are
// truncated; the result must still sum to exactly 10,000.
func ToBasisPoints(allocation map[string]float64) ([]string, []*big.Int, error) {
	assetIDs := make([]string, 0, len(allocation))
	for id := range allocation {
		assetIDs = append(assetIDs, id)
	}
	sort.Strings(assetIDs)

	points := make([]*big.Int, 0, len(assetIDs))
	total := int64(0)
	for _, id := range assetIDs {
		bps := decimal.NewFromFloat(allocation[id]).Mul(decimal.NewFromInt(100)).IntPart()
		if bps < 0 {
			return nil, nil, fmt.Errorf("chain: negative allocation for %s", id)
		}
		points = append(points, big.NewInt(bps))
		total += bps
	}

	if total != 10_000 {
		return nil, nil, fmt.Errorf("%w: got %d basis points", ErrBadAllocationSum, total)
	}
	return assetIDs, points, nil
}

// StorePortfolio validates the allocation, then signs and submits a
// storePortfolio transaction and waits for it to be mined, bounded by
// the receipt timeout. In demo mode it skips the network and returns a
// deterministic pseudo-hash derived from the payload.
func (s *PortfolioStore) StorePortfolio(ctx context.Context, allocation map[string]float64, investmentUSD float64, riskProfile string, sectors []string) (common.Hash, error) {
	assetIDs, points, err := ToBasisPoints(allocation)
	if err != nil {
		return common.Hash{}, err
	}

	// USD amount scaled by 1e18, matching the contract's fixed-point
	// convention.
	totalInvestment := decimal.NewFromFloat(investmentUSD).Mul(decimal.New(1, 18)).BigInt()

	if s.DemoMode() {
		hash := demoHash(assetIDs, points, riskProfile)
		s.log.Info().Str("tx", hash.Hex()).Msg("portfolio prepared for storage (demo mode, not broadcast)")
		return hash, nil
	}

	data, err := s.contractABI.Pack("storePortfolio", assetIDs, points, totalInvestment, riskProfile, sectors)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: encode storePortfolio: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: fetch nonce: %w", err)
	}
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: suggest gas price: %w", err)
	}
	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: fetch chain id: %w", err)
	}

	tx := types.NewTransaction(nonce, s.contract, big.NewInt(0), storeGasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("chain: broadcast transaction: %w", err)
	}

	s.log.Info().
		Str("tx", signed.Hash().Hex()).
		Uint64("nonce", nonce).
		Str("contract", s.contract.Hex()).
		Msg("storePortfolio submitted")

	waitCtx, cancel := context.WithTimeout(ctx, s.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, s.client, signed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: wait for receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrTxReverted, signed.Hash().Hex())
	}
	return signed.Hash(), nil
}

// StoredPortfolio is one record read back from the contract.
type StoredPortfolio struct {
	AssetIDs        []string
	BasisPoints     []*big.Int
	TotalInvestment *big.Int
	Timestamp       time.Time
	RiskProfile     string
	Sectors         []string
}

// PortfolioCount returns how many portfolios the user has stored.
func (s *PortfolioStore) PortfolioCount(ctx context.Context, user common.Address) (uint64, error) {
	out, err := s.call(ctx, "getUserPortfolioCount", user)
	if err != nil {
		return 0, err
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("chain: unexpected getUserPortfolioCount result type %T", out[0])
	}
	return count.Uint64(), nil
}

// Portfolio reads one stored portfolio back by index.
func (s *PortfolioStore) Portfolio(ctx context.Context, user common.Address, index uint64) (*StoredPortfolio, error) {
	out, err := s.call(ctx, "getPortfolio", user, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}
	if len(out) != 6 {
		return nil, fmt.Errorf("chain: unexpected getPortfolio result arity %d", len(out))
	}

	stored := &StoredPortfolio{}
	var ok bool
	if stored.AssetIDs, ok = out[0].([]string); !ok {
		return nil, fmt.Errorf("chain: unexpected assetIds type %T", out[0])
	}
	if stored.BasisPoints, ok = out[1].([]*big.Int); !ok {
		return nil, fmt.Errorf("chain: unexpected allocations type %T", out[1])
	}
	if stored.TotalInvestment, ok = out[2].(*big.Int); !ok {
		return nil, fmt.Errorf("chain: unexpected totalInvestment type %T", out[2])
	}
	ts, ok := out[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("chain: unexpected timestamp type %T", out[3])
	}
	stored.Timestamp = time.Unix(ts.Int64(), 0)
	if stored.RiskProfile, ok = out[4].(string); !ok {
		return nil, fmt.Errorf("chain: unexpected riskProfile type %T", out[4])
	}
	if stored.Sectors, ok = out[5].([]string); !ok {
		return nil, fmt.Errorf("chain: unexpected sectors type %T", out[5])
	}
	return stored, nil
}

func (s *PortfolioStore) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	data, err := s.contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: encode %s: %w", method, err)
	}

	raw, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &s.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s: %w", method, err)
	}

	out, err := s.contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("chain: decode %s: %w", method, err)
	}
	return out, nil
}

// demoHash derives a stable pseudo transaction hash from the payload so
// the demo path is reproducible and clearly not a real broadcast.
func demoHash(assetIDs []string, points []*big.Int, riskProfile string) common.Hash {
	var payload []byte
	for i, id := range assetIDs {
		payload = append(payload, []byte(id)...)
		payload = append(payload, points[i].Bytes()...)
	}
	payload = append(payload, []byte(riskProfile)...)
	return crypto.Keccak256Hash(payload)
}
