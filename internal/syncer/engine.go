// Package syncer reconciles locally cached wallet fields with the node.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"

	"github.com/tmpim/tenebra-wallet/internal/client"
	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

// Lookup is the slice of the node client the engine needs.
type Lookup interface {
	LookupAddresses(ctx context.Context, addresses []string, fetchNames bool) (client.AddressLookupResults, error)
	LookupStakes(ctx context.Context, addresses []string) (client.StakeLookupResults, error)
}

// Engine periodically (and on demand) fetches balance, name count and stake
// for every known wallet and merges the results into the wallet store.
type Engine struct {
	lookup  Lookup
	wallets *store.WalletStore
	bus     EventBus.Bus
	log     *logrus.Entry

	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a sync engine. interval is the auto-refresh period for Start;
// SyncAll and SyncOne work without Start having been called.
func New(lookup Lookup, wallets *store.WalletStore, bus EventBus.Bus, interval time.Duration) *Engine {
	return &Engine{
		lookup:   lookup,
		wallets:  wallets,
		bus:      bus,
		log:      logrus.WithField("component", "syncer"),
		interval: interval,
	}
}

// SyncAll batches every known address into one address lookup and one stake
// lookup, then reconciles each wallet. Wallets whose address the node does
// not know get their cached fields cleared; they are never deleted. A
// transport failure aborts the whole batch without touching any wallet, so a
// transient outage cannot mark every wallet as lost.
func (e *Engine) SyncAll(ctx context.Context) ([]*model.Wallet, error) {
	wallets := e.wallets.List()
	if len(wallets) == 0 {
		return nil, nil
	}

	addresses := make([]string, 0, len(wallets))
	for _, w := range wallets {
		addresses = append(addresses, w.Address)
	}

	lookupResults, err := e.lookup.LookupAddresses(ctx, addresses, true)
	if err != nil {
		return nil, fmt.Errorf("address lookup failed: %w", err)
	}
	stakeResults, err := e.lookup.LookupStakes(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("stake lookup failed: %w", err)
	}

	syncTime := time.Now()
	updated := make([]*model.Wallet, 0, len(wallets))
	for _, w := range wallets {
		res := buildResult(lookupResults[w.Address], stakeResults[w.Address], syncTime)

		applied, err := e.wallets.ApplySync(w.ID, res)
		if err != nil {
			// Deleted while the lookup was in flight; drop the stale result.
			e.log.WithField("id", w.ID).Debug("discarding sync result for removed wallet")
			continue
		}
		updated = append(updated, applied)
	}

	e.log.WithFields(logrus.Fields{
		"wallets": len(wallets),
		"synced":  len(updated),
	}).Debug("synced all wallets")
	return updated, nil
}

// SyncOne reconciles a single wallet by ID.
func (e *Engine) SyncOne(ctx context.Context, id string) (*model.Wallet, error) {
	w, err := e.wallets.Get(id)
	if err != nil {
		return nil, err
	}

	lookupResults, err := e.lookup.LookupAddresses(ctx, []string{w.Address}, true)
	if err != nil {
		return nil, fmt.Errorf("address lookup failed: %w", err)
	}
	stakeResults, err := e.lookup.LookupStakes(ctx, []string{w.Address})
	if err != nil {
		return nil, fmt.Errorf("stake lookup failed: %w", err)
	}

	res := buildResult(lookupResults[w.Address], stakeResults[w.Address], time.Now())
	return e.wallets.ApplySync(w.ID, res)
}

// SyncAddress reconciles the wallet with the given address, if one is known.
func (e *Engine) SyncAddress(ctx context.Context, address string) (*model.Wallet, error) {
	w, err := e.wallets.GetByAddress(address)
	if err != nil {
		return nil, err
	}
	return e.SyncOne(ctx, w.ID)
}

func buildResult(addr *model.Address, stake *model.Stake, syncTime time.Time) store.SyncResult {
	res := store.SyncResult{Time: syncTime}
	if addr == nil {
		return res
	}

	res.Found = true
	res.Balance = addr.Balance
	res.FirstSeen = addr.FirstSeen
	if addr.Names != nil {
		res.Names = *addr.Names
	}
	if stake != nil {
		s := stake.Stake
		res.Stake = &s
	}
	return res
}

// Start launches the auto-refresh loop and subscribes to node push events:
// a transaction touching a known wallet address triggers a targeted sync for
// just that wallet, and each new block triggers a full refresh (any block can
// change balances through mining rewards and stake payouts).
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return fmt.Errorf("sync engine already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	// Async delivery: handlers do lookup I/O and must not stall the
	// publisher (the websocket read goroutine).
	if err := e.bus.SubscribeAsync(event.TopicTransaction, e.onTransaction, false); err != nil {
		cancel()
		return err
	}
	if err := e.bus.SubscribeAsync(event.TopicBlock, e.onBlock, false); err != nil {
		cancel()
		return err
	}

	go e.loop(ctx)
	return nil
}

// Stop halts the refresh loop and unsubscribes from the bus.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel == nil {
		return
	}

	e.bus.Unsubscribe(event.TopicTransaction, e.onTransaction)
	e.bus.Unsubscribe(event.TopicBlock, e.onBlock)
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.SyncAll(ctx); err != nil {
				e.log.WithError(err).Warn("periodic sync failed")
			}
		}
	}
}

func (e *Engine) onTransaction(tx *model.Transaction) {
	// Bound the cost under high event rates: only the affected wallets are
	// re-synced, not the whole store.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, address := range []string{tx.From, tx.To} {
		if address == "" {
			continue
		}
		if _, err := e.SyncAddress(ctx, address); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // not one of ours
			}
			e.log.WithError(err).WithField("address", address).
				Warn("push-triggered sync failed")
		}
	}
}

func (e *Engine) onBlock(_ *model.Block) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := e.SyncAll(ctx); err != nil {
		e.log.WithError(err).Warn("block-triggered sync failed")
	}
}
