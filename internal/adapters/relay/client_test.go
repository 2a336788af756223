package relay

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/domain"
)

func relayArgs(from, to domain.Token) *domain.QuoteArgs {
	return &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: from, To: to, ChainID: from.ChainID},
		SellAmount:  big.NewInt(1_000_000),
	}
}

func erc20(symbol string, b byte) domain.Token {
	return domain.Token{
		Symbol:   symbol,
		ChainID:  1,
		Address:  common.BytesToAddress([]byte{b}),
		Decimals: 6,
	}
}

func TestSupportsGatesOnChainAndPair(t *testing.T) {
	c := NewClient("http://relay", []uint64{1, 10})

	a, b := common.BytesToAddress([]byte{0x01}), common.BytesToAddress([]byte{0x02})
	require.True(t, c.Supports(1, a, b))
	require.True(t, c.Supports(10, a, b))
	require.False(t, c.Supports(137, a, b))
	require.False(t, c.Supports(1, a, a))
}

func TestQuoteMapsAggregatorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/quote", r.URL.Path)
		require.Equal(t, "1000000", r.URL.Query().Get("sellAmount"))

		raw, _ := sonic.Marshal(quotePayload{
			BuyAmount:        "998500",
			EstimatedGas:     310_000,
			FeeBps:           15,
			AllowanceSpender: "0x00000000000000000000000000000000000000aa",
		})
		w.Write(raw)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, []uint64{1})
	args := relayArgs(erc20("USDC", 0x02), erc20("USDT", 0x07))

	q, err := c.Quote(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, int64(998_500), q.BuyAmount.Int64())
	require.Equal(t, uint64(310_000), q.GasEstimate)
	require.Equal(t, int64(15), q.FeeBps)
	require.Len(t, q.AllowanceTargets, 1)
	require.Equal(t, common.HexToAddress("0xaa"), q.AllowanceTargets[0].Spender)
	require.Equal(t, args.From.Address, q.AllowanceTargets[0].Token)
}

func TestQuoteSkipsAllowanceForNativeSell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := sonic.Marshal(quotePayload{BuyAmount: "1", AllowanceSpender: "0xaa"})
		w.Write(raw)
	}))
	defer srv.Close()

	native := erc20("ETH", 0x00)
	native.Address = domain.NativeAddress
	native.Roles = domain.RoleNative

	q, err := NewClient(srv.URL, []uint64{1}).Quote(context.Background(), relayArgs(native, erc20("USDT", 0x07)))
	require.NoError(t, err)
	require.Empty(t, q.AllowanceTargets)
}

func TestTransactionDecodesCalldata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/swap", r.URL.Path)
		require.Equal(t, "75", r.URL.Query().Get("slippageBps"))

		raw, _ := sonic.Marshal(txPayload{
			To:       "0x00000000000000000000000000000000000000bb",
			Data:     "0xdeadbeef",
			Value:    "0",
			Gas:      280_000,
			GasPrice: "",
		})
		w.Write(raw)
	}))
	defer srv.Close()

	args := &domain.TransactionArgs{
		QuoteArgs:   *relayArgs(erc20("USDC", 0x02), erc20("USDT", 0x07)),
		SlippageBps: 75,
	}

	tx, err := NewClient(srv.URL, []uint64{1}).Transaction(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xbb"), tx.To)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, tx.Data)
	require.Equal(t, uint64(280_000), tx.Gas)
	require.Nil(t, tx.Value)
}
