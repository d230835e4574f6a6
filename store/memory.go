package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
)

// memoryStore is the in-memory OrderStore implementation. Orders are kept in
// a map guarded by a read-write mutex; reads hand out copies so callers can
// never mutate the order of record directly.
type memoryStore struct {
	mu        sync.RWMutex
	orders    map[string]*types.SwapOrder
	userIndex map[string][]string
}

// NewMemoryStore creates an empty in-memory order store.
//
// Returns:
// - OrderStore: the new store instance.
func NewMemoryStore() OrderStore {
	return &memoryStore{
		orders:    make(map[string]*types.SwapOrder),
		userIndex: make(map[string][]string),
	}
}

func (s *memoryStore) Create(_ context.Context, order *types.SwapOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeKey(order.OrderHash)
	if _, exists := s.orders[key]; exists {
		return relayerrors.ErrDuplicateOrder
	}

	stored := *order
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.orders[key] = &stored

	user := normalizeKey(order.Intent.UserAddress)
	s.userIndex[user] = append(s.userIndex[user], key)

	return nil
}

func (s *memoryStore) Get(_ context.Context, orderHash string) (*types.SwapOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[normalizeKey(orderHash)]
	if !exists {
		return nil, relayerrors.ErrOrderNotFound
	}

	copied := *order
	return &copied, nil
}

func (s *memoryStore) ListByUser(_ context.Context, userAddress string) ([]*types.SwapOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := s.userIndex[normalizeKey(userAddress)]
	orders := make([]*types.SwapOrder, 0, len(hashes))
	for _, hash := range hashes {
		if order, exists := s.orders[hash]; exists {
			copied := *order
			orders = append(orders, &copied)
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (s *memoryStore) SetSignature(_ context.Context, orderHash string, signature string) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		if order.Signature == "" {
			order.Signature = signature
		}
	})
}

func (s *memoryStore) SetSecret(_ context.Context, orderHash string, secret string) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		if order.Secret == "" {
			order.Secret = secret
		}
	})
}

func (s *memoryStore) SetEscrow(_ context.Context, orderHash string, side htlc.Side, escrow, deployTx string, deployedAt uint64) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		target := sideOf(order, side)
		if target.Escrow == "" {
			target.Escrow = escrow
			target.DeployTx = deployTx
			target.DeployedAt = deployedAt
		}
	})
}

func (s *memoryStore) SetWithdrawTx(_ context.Context, orderHash string, side htlc.Side, txHash string) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		target := sideOf(order, side)
		if target.WithdrawTx == "" {
			target.WithdrawTx = txHash
		}
	})
}

func (s *memoryStore) SetCancelTx(_ context.Context, orderHash string, side htlc.Side, txHash string) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		target := sideOf(order, side)
		if target.CancelTx == "" {
			target.CancelTx = txHash
		}
	})
}

func (s *memoryStore) SetStatus(_ context.Context, orderHash string, status types.OrderStatus) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		if order.Status.Terminal() {
			return
		}
		order.Status = status
		if status == types.StatusCompleted && order.ExecutedAt == nil {
			now := time.Now().UTC()
			order.ExecutedAt = &now
		}
	})
}

func (s *memoryStore) MarkFailed(_ context.Context, orderHash string, reason string) error {
	return s.update(orderHash, func(order *types.SwapOrder) {
		if order.Status.Terminal() {
			return
		}
		order.Status = types.StatusFailed
		order.FailureReason = reason
	})
}

// update applies a mutation under the write lock and bumps UpdatedAt.
func (s *memoryStore) update(orderHash string, mutate func(*types.SwapOrder)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[normalizeKey(orderHash)]
	if !exists {
		return relayerrors.ErrOrderNotFound
	}

	mutate(order)
	order.UpdatedAt = time.Now().UTC()

	return nil
}

func sideOf(order *types.SwapOrder, side htlc.Side) *types.EscrowSide {
	if side == htlc.SideDestination {
		return &order.Dst
	}
	return &order.Src
}

func normalizeKey(s string) string {
	return strings.ToLower(s)
}
