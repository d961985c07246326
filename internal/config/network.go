package config

import (
	"crypto/ecdsa"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Network struct {
	EthClient *ethclient.Client
	Escrow    common.Address
	ChainID   *big.Int
	Signer    *ecdsa.PrivateKey
	GasLimit  uint64
	// FromBlock is the escrow deployment block
	FromBlock uint64
}

const defaultRequestTimeout = 10 * time.Second
const defaultGasLimit uint64 = 500000
const maxChainID int64 = math.MaxUint64/2 - 36

func (c *config) Network() Network {
	return c.networkOnce.Do(func() interface{} {
		var cfg struct {
			RPC       string         `fig:"rpc,required"`
			Escrow    common.Address `fig:"escrow,required"`
			ChainID   int64          `fig:"chain_id,required"`
			Signer    string         `fig:"signer,required"`
			GasLimit  uint64         `fig:"gas_limit"`
			FromBlock uint64         `fig:"from_block"`
		}

		err := figure.Out(&cfg).
			With(figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "network")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out network"))
		}

		if cfg.ChainID > maxChainID || cfg.ChainID <= 0 {
			panic("chain_id value out of range due to EIP 2294")
		}
		signer, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Signer, "0x"))
		if err != nil {
			panic(errors.Wrap(err, "failed to parse signer key"))
		}
		cli, err := ethclient.Dial(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to RPC provider"))
		}

		if cfg.GasLimit == 0 {
			cfg.GasLimit = defaultGasLimit
		}

		return Network{
			EthClient: cli,
			Escrow:    cfg.Escrow,
			ChainID:   big.NewInt(cfg.ChainID),
			Signer:    signer,
			GasLimit:  cfg.GasLimit,
			FromBlock: cfg.FromBlock,
		}
	}).(Network)
}
