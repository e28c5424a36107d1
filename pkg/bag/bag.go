// Package bag keeps a local view of the server-side shopping bag and pushes
// quantity edits to the backend through per-item debounced mutations.
package bag

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/models"
)

const DefaultDelay = time.Second

const (
	MsgLoginToAdd    = "Please login to add items to bag"
	MsgLoginToUpdate = "Please login to update bag"
	MsgLoginToRemove = "Please login to remove items from bag"
	MsgUpdateFailed  = "Failed to update bag"
	MsgLoadFailed    = "Failed to load bag"
)

var (
	ErrNotAuthenticated = errors.New("bag: authentication required")
	ErrNegativeQuantity = errors.New("bag: quantity cannot be negative")
)

type Client interface {
	GetBag(ctx context.Context) (*models.Bag, error)
	MutateBag(ctx context.Context, req models.MutateBagRequest) (*models.Bag, error)
}

type AuthSource interface {
	IsAuthenticated() bool
}

type pending struct {
	timer   *time.Timer
	target  int
	comment string
	seq     uint64
	epoch   uint64
}

type Synchronizer struct {
	client Client
	auth   AuthSource
	logger *zap.Logger
	delay  time.Duration

	mu      sync.Mutex
	bag     *models.Bag
	message string
	loading int
	pending map[int]*pending
	seq     uint64
	// sent holds the newest seq dispatched per id so a late timer never
	// overwrites a newer quantity.
	sent map[int]uint64
	// epoch changes on Reset; work scheduled before it is dropped.
	epoch uint64

	locks    *keyedMutex
	inflight sync.WaitGroup
}

func NewSynchronizer(client Client, auth AuthSource, delay time.Duration, logger *zap.Logger) *Synchronizer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Synchronizer{
		client:  client,
		auth:    auth,
		logger:  logger,
		delay:   delay,
		pending: make(map[int]*pending),
		sent:    make(map[int]uint64),
		locks:   newKeyedMutex(),
	}
}

// AddToBag schedules the item at its current quantity plus delta. A pending
// edit counts as the current quantity.
func (s *Synchronizer) AddToBag(ctx context.Context, packID, delta int, comment string) error {
	if !s.auth.IsAuthenticated() {
		return s.reject(MsgLoginToAdd)
	}
	return s.schedule(ctx, packID, func(current int) int { return current + delta }, comment)
}

func (s *Synchronizer) UpdateBagItem(ctx context.Context, packID, quantity int, comment string) error {
	if !s.auth.IsAuthenticated() {
		return s.reject(MsgLoginToUpdate)
	}
	return s.schedule(ctx, packID, func(int) int { return quantity }, comment)
}

func (s *Synchronizer) RemoveFromBag(ctx context.Context, packID int) error {
	if !s.auth.IsAuthenticated() {
		return s.reject(MsgLoginToRemove)
	}
	return s.schedule(ctx, packID, func(int) int { return 0 }, "")
}

func (s *Synchronizer) reject(msg string) error {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	return ErrNotAuthenticated
}

// schedule replaces any unsent edit of packID and restarts its delay. target
// maps the current quantity (pending edit first, then the local bag) to the
// new one and runs under the lock.
func (s *Synchronizer) schedule(ctx context.Context, packID int, target func(current int) int, comment string) error {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.bag.Quantity(packID)
	old, hasOld := s.pending[packID]
	if hasOld {
		current = old.target
	}
	quantity := target(current)
	if quantity < 0 {
		s.logger.Warn("rejecting negative bag quantity", zap.Int("pack_id", packID), zap.Int("quantity", quantity))
		return ErrNegativeQuantity
	}

	if hasOld && old.timer.Stop() {
		s.inflight.Done()
	}

	s.seq++
	p := &pending{target: quantity, comment: comment, seq: s.seq, epoch: s.epoch}
	s.inflight.Add(1)
	p.timer = time.AfterFunc(s.delay, func() { s.flush(ctx, packID, p) })
	s.pending[packID] = p

	s.logger.Debug("bag mutation scheduled",
		zap.Int("pack_id", packID),
		zap.Int("quantity", quantity),
		zap.Duration("delay", s.delay))
	return nil
}

func (s *Synchronizer) flush(ctx context.Context, packID int, p *pending) {
	defer s.inflight.Done()

	s.mu.Lock()
	if s.pending[packID] == p {
		delete(s.pending, packID)
	}
	s.mu.Unlock()

	unlock := s.locks.Lock(packID)
	defer unlock()

	s.mu.Lock()
	stale := p.epoch != s.epoch || p.seq < s.sent[packID]
	if !stale {
		s.sent[packID] = p.seq
	}
	s.mu.Unlock()
	if stale {
		return
	}

	updated, err := s.client.MutateBag(ctx, models.MutateBagRequest{
		PackagingID: packID,
		Quantity:    p.target,
		Comment:     p.comment,
	})
	if err != nil {
		s.logger.Error("failed to mutate bag",
			zap.Int("pack_id", packID),
			zap.Int("quantity", p.target),
			zap.Error(err))

		s.mu.Lock()
		current := p.epoch == s.epoch
		if current {
			s.message = api.Message(err, MsgUpdateFailed)
		}
		s.mu.Unlock()

		if current {
			_ = s.Refresh(ctx)
		}
		return
	}

	s.mu.Lock()
	if p.epoch == s.epoch {
		s.bag = updated
		s.message = ""
	}
	s.mu.Unlock()
}

// Refresh replaces the local bag with the server's. Anonymous sessions get
// an empty bag without a request.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		s.mu.Lock()
		s.bag = nil
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.loading++
	epoch := s.epoch
	s.mu.Unlock()

	fetched, err := s.client.GetBag(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.logger.Error("failed to load bag", zap.Error(err))
		if epoch == s.epoch {
			s.message = api.Message(err, MsgLoadFailed)
		}
		return err
	}
	if epoch == s.epoch {
		s.bag = fetched
	}
	return nil
}

// Reset cancels unsent edits and drops the local bag.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.pending {
		if p.timer.Stop() {
			s.inflight.Done()
		}
		delete(s.pending, id)
	}
	s.epoch++
	s.bag = nil
	s.message = ""
}

// Wait blocks until every scheduled edit has been sent or cancelled.
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

// Bag returns a copy of the local bag, or nil before the first load.
func (s *Synchronizer) Bag() *models.Bag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Clone()
}

// Total is the server-reported subtotal.
func (s *Synchronizer) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bag == nil {
		return 0
	}
	return s.bag.BagSubTotal
}

func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Count()
}

// Error is the last user-visible failure message, or "".
func (s *Synchronizer) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.message = ""
	s.mu.Unlock()
}

func (s *Synchronizer) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Pending reports the unsent target quantity per pack id.
func (s *Synchronizer) Pending() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.pending))
	for id, p := range s.pending {
		out[id] = p.target
	}
	return out
}
