package settlement

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

// simulatedChainID is the chain id the simulated backend signs with
var simulatedChainID = big.NewInt(1337)

// minedBackend mines every transaction as soon as it is sent.
type minedBackend struct {
	*backends.SimulatedBackend
}

func (b minedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}
	b.Commit()
	return nil
}

type testChain struct {
	sim    *backends.SimulatedBackend
	key    *ecdsa.PrivateKey
	from   common.Address
	escrow common.Address
}

func newTestChain(t *testing.T) *testChain {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	balance, _ := new(big.Int).SetString("100000000000000000000", 10)
	sim := backends.NewSimulatedBackend(core.GenesisAlloc{from: {Balance: balance}}, 10000000)
	t.Cleanup(func() { _ = sim.Close() })

	return &testChain{sim: sim, key: key, from: from}
}

// deploy puts the runtime code on chain and mines it.
func (c *testChain) deploy(t *testing.T, runtime []byte) common.Address {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, simulatedChainID)
	require.NoError(t, err)
	opts.GasLimit = 1000000

	address, _, _, err := bind.DeployContract(opts, abi.ABI{}, creationCode(runtime), c.sim)
	require.NoError(t, err)
	c.sim.Commit()
	return address
}

func (c *testChain) escrowOpts(address common.Address) EscrowOpts {
	return EscrowOpts{Address: address, Signer: c.key, ChainID: simulatedChainID}
}

// sent is the number of transactions of the signer, mined or pending.
func (c *testChain) sent(t *testing.T) uint64 {
	nonce, err := c.sim.PendingNonceAt(context.Background(), c.from)
	require.NoError(t, err)
	return nonce
}

func (c *testChain) mined(t *testing.T) uint64 {
	nonce, err := c.sim.NonceAt(context.Background(), c.from, nil)
	require.NoError(t, err)
	return nonce
}

// creationCode copies the runtime code into memory and returns it:
// PUSH1 len, DUP1, PUSH1 11, PUSH1 0, CODECOPY, PUSH1 0, RETURN.
func creationCode(runtime []byte) []byte {
	code := []byte{0x60, byte(len(runtime)), 0x80, 0x60, 0x0b, 0x60, 0x00, 0x39, 0x60, 0x00, 0xf3}
	return append(code, runtime...)
}

// matchCreatedRuntime emits MatchCreated(bid ^ ask, bid, ask) with the price in
// the data for any call, like createMatch of the escrow does.
func matchCreatedRuntime(t *testing.T) []byte {
	parsed, err := abi.JSON(strings.NewReader(auctionEscrowABI))
	require.NoError(t, err)
	eventID := parsed.Events[matchCreatedEvent].ID

	// MSTORE(64, CALLDATALOAD(68)) puts the price after the two zero addresses
	code := []byte{0x60, 0x44, 0x35, 0x60, 0x40, 0x52}
	// topics in reverse order: ask, bid, bid ^ ask, event id
	code = append(code, 0x60, 0x24, 0x35)
	code = append(code, 0x60, 0x04, 0x35)
	code = append(code, 0x60, 0x04, 0x35, 0x60, 0x24, 0x35, 0x18)
	code = append(code, 0x7f)
	code = append(code, eventID.Bytes()...)
	// LOG4(0, 96), STOP
	return append(code, 0x60, 0x60, 0x60, 0x00, 0xa4, 0x00)
}

// revertingRuntime reverts every call.
var revertingRuntime = []byte{0x60, 0x00, 0x60, 0x00, 0xfd}

func getTestEscrowOn(t *testing.T, backend EscrowBackend, opts EscrowOpts) *Escrow {
	e, err := NewEscrow(logan.New(), backend, opts)
	require.NoError(t, err)
	return e
}
