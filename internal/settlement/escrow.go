package settlement

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const (
	DefaultGasLimit uint64 = 500000

	createMatchMethod = "createMatch"
	matchCreatedEvent = "MatchCreated"
)

const auctionEscrowABI = `[
	{
		"inputs": [
			{"name": "_bidIntentId", "type": "bytes32"},
			{"name": "_askIntentId", "type": "bytes32"},
			{"name": "_matchPrice", "type": "uint256"}
		],
		"name": "createMatch",
		"outputs": [{"name": "matchId", "type": "bytes32"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "matchId", "type": "bytes32"},
			{"indexed": true, "name": "bidIntentId", "type": "bytes32"},
			{"indexed": true, "name": "askIntentId", "type": "bytes32"},
			{"indexed": false, "name": "bidder", "type": "address"},
			{"indexed": false, "name": "asker", "type": "address"},
			{"indexed": false, "name": "matchPrice", "type": "uint256"}
		],
		"name": "MatchCreated",
		"type": "event"
	}
]`

var (
	errBadIntentID = errors.New("intent id is not a 32 bytes hex string")
	errNotMined    = errors.New("createMatch transaction of a previous attempt is not mined yet")
)

type EscrowBackend interface {
	bind.ContractBackend
	bind.DeployBackend
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
}

type EscrowOpts struct {
	Address  common.Address
	Signer   *ecdsa.PrivateKey
	ChainID  *big.Int
	GasLimit uint64
	// FromBlock is where the lookup of earlier MatchCreated events starts
	FromBlock uint64
}

// Escrow settles matches through the AuctionEscrow contract.
type Escrow struct {
	log      *logan.Entry
	backend  EscrowBackend
	contract *bind.BoundContract
	abi      abi.ABI
	opts     EscrowOpts
}

func NewEscrow(log *logan.Entry, backend EscrowBackend, opts EscrowOpts) (*Escrow, error) {
	parsed, err := abi.JSON(strings.NewReader(auctionEscrowABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse escrow ABI")
	}
	if opts.GasLimit == 0 {
		opts.GasLimit = DefaultGasLimit
	}

	return &Escrow{
		log:      log,
		backend:  backend,
		contract: bind.NewBoundContract(opts.Address, parsed, backend, backend, backend),
		abi:      parsed,
		opts:     opts,
	}, nil
}

// SubmitMatch sends createMatch and waits for it to be mined. A reverted
// transaction is a failed outcome, not an error. Nothing is sent when an
// earlier attempt for the same pair of intents is already on chain or still
// waiting to be mined.
func (e *Escrow) SubmitMatch(ctx context.Context, m engine.Match) (Receipt, error) {
	bid, err := intentKey(m.BidIntentID)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "invalid bid intent id")
	}
	ask, err := intentKey(m.AskIntentID)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "invalid ask intent id")
	}
	log := e.log.WithField("match_id", m.MatchID)

	receipt, found, err := e.committed(ctx, log, m.TxRef, bid, ask)
	if err != nil || found {
		return receipt, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(e.opts.Signer, e.opts.ChainID)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to create transactor")
	}
	opts.Context = ctx
	opts.GasLimit = e.opts.GasLimit

	tx, err := e.contract.Transact(opts, createMatchMethod, bid, ask, big.NewInt(m.SettlementPrice))
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to send createMatch transaction")
	}
	txRef := tx.Hash().Hex()
	log = log.WithField("tx_hash", txRef)
	log.Debug("createMatch sent, waiting for receipt")

	mined, err := bind.WaitMined(ctx, e.backend, tx)
	if err != nil {
		// the transaction may still be mined, the next attempt checks it by hash
		return Receipt{TxRef: txRef}, errors.Wrap(err, "failed to wait for createMatch receipt")
	}
	if mined == nil {
		return Receipt{TxRef: txRef}, errors.New("createMatch receipt is empty")
	}
	return e.outcome(log, mined), nil
}

// committed looks for an earlier commit of the pair: the transaction of the
// previous attempt first, then a MatchCreated event for both intents.
func (e *Escrow) committed(ctx context.Context, log *logan.Entry, txRef string, bid, ask [32]byte) (Receipt, bool, error) {
	if txRef != "" {
		hash := common.HexToHash(txRef)
		mined, err := e.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && mined != nil:
			if mined.Status == types.ReceiptStatusSuccessful {
				return e.outcome(log.WithField("tx_hash", txRef), mined), true, nil
			}
			// reverted, nothing was created by it
		case err != nil && err != ethereum.NotFound:
			return Receipt{TxRef: txRef}, false, errors.Wrap(err, "failed to get receipt of previous attempt")
		default:
			_, pending, err := e.backend.TransactionByHash(ctx, hash)
			if err == nil {
				return Receipt{TxRef: txRef}, false, errors.From(errNotMined, logan.F{
					"tx_hash": txRef,
					"pending": pending,
				})
			}
			if err != ethereum.NotFound {
				return Receipt{TxRef: txRef}, false, errors.Wrap(err, "failed to get transaction of previous attempt")
			}
			log.WithField("tx_hash", txRef).Warn("previous createMatch transaction was dropped")
		}
	}

	event := e.abi.Events[matchCreatedEvent]
	logs, err := e.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(e.opts.FromBlock),
		Addresses: []common.Address{e.opts.Address},
		Topics:    [][]common.Hash{{event.ID}, nil, {common.Hash(bid)}, {common.Hash(ask)}},
	})
	if err != nil {
		return Receipt{TxRef: txRef}, false, errors.Wrap(err, "failed to filter MatchCreated events")
	}
	for _, l := range logs {
		if l.Removed {
			continue
		}
		log.WithField("tx_hash", l.TxHash.Hex()).Info("match is already created in escrow")
		return Receipt{TxRef: l.TxHash.Hex(), Outcome: engine.StatusConfirmed}, true, nil
	}
	return Receipt{}, false, nil
}

func (e *Escrow) outcome(log *logan.Entry, mined *types.Receipt) Receipt {
	txRef := mined.TxHash.Hex()
	if mined.Status != types.ReceiptStatusSuccessful {
		log.Warn("createMatch transaction reverted")
		return Receipt{TxRef: txRef, Outcome: engine.StatusFailed}
	}

	if chainMatchID, ok := e.matchCreated(mined.Logs); ok {
		log = log.WithField("escrow_match_id", chainMatchID.Hex())
	}
	log.Info("createMatch confirmed")
	return Receipt{TxRef: txRef, Outcome: engine.StatusConfirmed}
}

// matchCreated looks up the MatchCreated event emitted by the escrow. The
// first topic is the event signature, the second one the escrow match id.
func (e *Escrow) matchCreated(logs []*types.Log) (common.Hash, bool) {
	event, ok := e.abi.Events[matchCreatedEvent]
	if !ok {
		return common.Hash{}, false
	}

	for _, l := range logs {
		if l.Address != e.opts.Address || len(l.Topics) < 2 || l.Topics[0] != event.ID {
			continue
		}

		var body struct {
			Bidder     common.Address
			Asker      common.Address
			MatchPrice *big.Int
		}
		if err := e.abi.UnpackIntoInterface(&body, matchCreatedEvent, l.Data); err != nil {
			e.log.WithError(err).Warn("failed to unpack MatchCreated event")
			continue
		}
		e.log.WithFields(logan.F{
			"bidder":      body.Bidder.Hex(),
			"asker":       body.Asker.Hex(),
			"match_price": body.MatchPrice,
		}).Debug("found MatchCreated event")
		return l.Topics[1], true
	}
	return common.Hash{}, false
}

func intentKey(id string) ([32]byte, error) {
	raw := common.FromHex(id)
	if len(raw) == 0 || len(raw) > common.HashLength {
		return [32]byte{}, errors.From(errBadIntentID, logan.F{"intent_id": id})
	}
	return common.BytesToHash(raw), nil
}
