package cart

import (
	"context"
	"sync"
	"time"

	"github.com/emberlane/storefront-backend/internal/checkout"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
	"github.com/emberlane/storefront-backend/pkg/logger"
	"github.com/emberlane/storefront-backend/pkg/metrics"
	"github.com/emberlane/storefront-backend/pkg/money"
)

const (
	opAddItem        = "add_item"
	opUpdateQuantity = "update_quantity"
	opUpdateVariant  = "update_variant"
	opRemoveItem     = "remove_item"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Config carries the per-store constants.
type Config struct {
	SessionID             string
	FreeShippingThreshold money.Amount
	CoalesceWindow        time.Duration
	Rewriter              checkout.Rewriter
}

// Store owns the authoritative cart snapshot for one storefront session.
//
// All remote writes funnel through a single mutex so at most one mutation is
// outstanding against the platform per cart. Rapid quantity updates on the
// same line are debounced: the visible snapshot changes immediately, the
// remote dispatch waits out a short window and carries only the final
// requested quantity. Callers block until their window settles, so every
// public operation still returns a definite result.
type Store struct {
	gw  Gateway
	ids IDStore
	log *logger.Logger
	met *metrics.StoreMetrics
	cfg Config

	// writeMu serializes remote writes. Never hold mu while acquiring it.
	writeMu sync.Mutex

	mu       sync.Mutex
	cart     *Cart // last known-good remote snapshot, nil before first cart
	view     *Cart // displayed snapshot including optimistic edits
	open     bool
	loading  bool
	inflight int
	seq      uint64 // last assigned dispatch sequence
	applied  uint64 // highest sequence whose response was applied
	pending  map[string]*pendingLine
	subs     map[uint64]chan View
	nextSub  uint64
	lastUsed time.Time
}

// pendingLine is a not-yet-dispatched edit for one cart line. A newer intent
// for the same line replaces the target in place; done settles once for all
// callers waiting on the same window.
type pendingLine struct {
	quantity      int    // 0 means remove
	merchandiseID string // non-empty means variant change
	timer         *time.Timer
	done          chan struct{}
	err           error
}

func NewStore(gw Gateway, ids IDStore, log *logger.Logger, met *metrics.StoreMetrics, cfg Config) *Store {
	return &Store{
		gw:       gw,
		ids:      ids,
		log:      log,
		met:      met,
		cfg:      cfg,
		pending:  make(map[string]*pendingLine),
		subs:     make(map[uint64]chan View),
		lastUsed: time.Now(),
	}
}

// Hydrate loads the persisted cart id and fetches the cart once. A stale or
// missing id yields an empty cart, never an error; only infrastructure
// failures surface.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notify()
	}()

	id, err := s.ids.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load persisted cart id")
	}
	if id == "" {
		return nil
	}

	snap, err := s.gw.GetCart(ctx, id)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			// The platform expired the cart. Treat as empty, not as an error.
			if clearErr := s.ids.Clear(ctx); clearErr != nil {
				s.log.Warn(ctx, "failed to clear stale cart id")
			}
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.seq++
	s.applySnapshotLocked(s.seq, snap)
	s.mu.Unlock()
	return nil
}

// AddItem adds a quantity of a variant, creating the remote cart first when
// no usable id exists. A stale persisted id is recovered transparently: the
// id is cleared, a fresh cart is created and the original intent is replayed
// once.
func (s *Store) AddItem(ctx context.Context, merchandiseID string, quantity int) error {
	if merchandiseID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchandise id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	s.touch()

	// Optimistic for quantity only; the cart id is never guessed.
	s.mu.Lock()
	if s.view != nil {
		s.view.TotalQuantity += quantity
	}
	s.inflight++
	s.loading = true
	s.mu.Unlock()
	s.notify()

	err := s.withWrite(ctx, func(dispatchCtx context.Context, seq uint64) error {
		cartID := s.currentCartID()
		if cartID == "" {
			created, err := s.createAndPersist(dispatchCtx)
			if err != nil {
				return err
			}
			cartID = created
		}

		snap, err := s.gw.AddLine(dispatchCtx, cartID, merchandiseID, quantity)
		if err != nil && pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			snap, err = s.recoverStale(dispatchCtx, func(freshID string) (*Cart, error) {
				return s.gw.AddLine(dispatchCtx, freshID, merchandiseID, quantity)
			})
		}
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.applySnapshotLocked(seq, snap)
		s.mu.Unlock()
		return nil
	})

	s.settleInflight(opAddItem, err)
	return err
}

// UpdateQuantity sets a line's quantity. Zero routes to removal; the remote
// API distinguishes removing a line from setting it to zero. Rapid calls on
// the same line within the coalescing window collapse into one dispatch that
// carries the last requested quantity.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, lineID)
	}
	s.touch()

	s.mu.Lock()
	if s.view == nil || s.view.FindLine(lineID) < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	s.optimisticSetQuantityLocked(lineID, quantity)

	p, replaced := s.upsertPendingLocked(lineID, quantity, "")
	switch {
	case replaced && p.timer != nil:
		s.met.IncCoalesced()
		p.timer.Reset(s.window())
	case replaced:
		// An immediate dispatch is already queued and will carry the
		// replaced quantity.
		s.met.IncCoalesced()
	default:
		p.timer = time.AfterFunc(s.window(), func() {
			s.dispatchLine(lineID)
		})
	}
	s.mu.Unlock()
	s.notify()

	return s.await(ctx, p)
}

// UpdateVariant swaps a line to a different merchandise selection at the
// given quantity. Variant changes replace any pending quantity edit on the
// line and dispatch immediately as one atomic remote operation.
func (s *Store) UpdateVariant(ctx context.Context, lineID, merchandiseID string, quantity int) error {
	if merchandiseID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchandise id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	s.touch()

	s.mu.Lock()
	if s.view == nil || s.view.FindLine(lineID) < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	s.optimisticSetQuantityLocked(lineID, quantity)

	p, replaced := s.upsertPendingLocked(lineID, quantity, merchandiseID)
	if replaced && p.timer != nil {
		p.timer.Stop()
	}
	s.mu.Unlock()
	s.notify()

	s.dispatchLine(lineID)
	return s.await(ctx, p)
}

// RemoveItem drops a line. The removal is optimistic and dispatches
// immediately, absorbing any pending quantity edit for the same line.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.touch()

	s.mu.Lock()
	if s.view == nil || s.view.FindLine(lineID) < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	s.optimisticRemoveLocked(lineID)

	p, replaced := s.upsertPendingLocked(lineID, 0, "")
	if replaced && p.timer != nil {
		p.timer.Stop()
	}
	s.mu.Unlock()
	s.notify()

	s.dispatchLine(lineID)
	return s.await(ctx, p)
}

// Open and Close flip the slide-over visibility flag. Pure UI state, no
// remote interaction.
func (s *Store) Open() {
	s.touch()
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Close() {
	s.touch()
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
	s.notify()
}

// CheckoutURL returns the handoff target with the platform host rewritten to
// the custom checkout domain, or "" when the cart is absent or empty.
func (s *Store) CheckoutURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.IsEmpty() || s.cart.CheckoutURL == "" {
		return ""
	}
	return s.cfg.Rewriter.Rewrite(s.cart.CheckoutURL)
}

// LastUsed reports the most recent public operation, for idle eviction.
func (s *Store) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// dispatchLine sends the pending edit for a line to the platform. Invoked by
// the debounce timer or directly for remove/variant intents; when both race,
// whichever dequeues the pending entry first performs the dispatch and the
// other finds nothing to do.
func (s *Store) dispatchLine(lineID string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	p, ok := s.pending[lineID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, lineID)
	quantity := p.quantity
	merchandiseID := p.merchandiseID
	cartID := ""
	if s.cart != nil {
		cartID = s.cart.ID
	}
	lineMerchandise := ""
	if s.cart != nil {
		if idx := s.cart.FindLine(lineID); idx >= 0 {
			lineMerchandise = s.cart.Lines[idx].Merchandise.ID
		}
	}
	s.seq++
	seq := s.seq
	s.inflight++
	s.mu.Unlock()

	op := opUpdateQuantity
	ctx := s.dispatchContext()

	var snap *Cart
	var err error
	switch {
	case cartID == "":
		err = pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
	case merchandiseID != "":
		op = opUpdateVariant
		snap, err = s.gw.UpdateLineVariant(ctx, cartID, lineID, merchandiseID, quantity)
	case quantity == 0:
		op = opRemoveItem
		snap, err = s.gw.RemoveLine(ctx, cartID, lineID)
	default:
		snap, err = s.gw.UpdateLineQuantity(ctx, cartID, lineID, quantity)
	}

	if err != nil && pkgerrors.HasCode(err, pkgerrors.CodeNotFound) && cartID != "" {
		snap, err = s.recoverLine(ctx, quantity, merchandiseID, lineMerchandise)
	}

	s.mu.Lock()
	if err != nil {
		s.rebuildViewLocked()
	} else {
		s.applySnapshotLocked(seq, snap)
	}
	s.inflight--
	s.loading = s.inflight > 0 || len(s.pending) > 0
	s.mu.Unlock()

	if err != nil {
		s.met.IncMutation(op, resultFailure)
		s.log.Error(ctx, "cart mutation failed", err)
	} else {
		s.met.IncMutation(op, resultSuccess)
	}

	p.err = err
	close(p.done)
	s.notify()
}

// recoverLine converges a line edit whose cart vanished remotely. The intent
// is replayed against a fresh cart: a remove intent is already satisfied by
// the empty cart, a quantity or variant intent becomes an add of the target
// merchandise.
func (s *Store) recoverLine(ctx context.Context, quantity int, variantID, lineMerchandise string) (*Cart, error) {
	merchandiseID := variantID
	if merchandiseID == "" {
		merchandiseID = lineMerchandise
	}

	return s.recoverStale(ctx, func(freshID string) (*Cart, error) {
		if quantity == 0 || merchandiseID == "" {
			return s.gw.GetCart(ctx, freshID)
		}
		return s.gw.AddLine(ctx, freshID, merchandiseID, quantity)
	})
}

// recoverStale clears the dead cart id, creates a fresh cart and replays the
// caller's intent exactly once. The user never sees the intermediate failure
// unless the replay itself fails.
func (s *Store) recoverStale(ctx context.Context, replay func(freshID string) (*Cart, error)) (*Cart, error) {
	s.met.IncRecovery()
	s.log.Warn(ctx, "stale cart id, creating a fresh cart")

	if err := s.ids.Clear(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear stale cart id")
	}
	freshID, err := s.createAndPersist(ctx)
	if err != nil {
		return nil, err
	}
	return replay(freshID)
}

func (s *Store) createAndPersist(ctx context.Context) (string, error) {
	created, err := s.gw.CreateCart(ctx)
	if err != nil {
		return "", err
	}
	if err := s.ids.Save(ctx, created.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart id")
	}

	s.mu.Lock()
	if s.cart == nil {
		s.cart = created.Clone()
		s.rebuildViewLocked()
	}
	s.mu.Unlock()
	return created.ID, nil
}

// withWrite runs fn with the single-writer lock held and an inflight marker
// set; fn receives its dispatch sequence for the stale-response check.
func (s *Store) withWrite(ctx context.Context, fn func(ctx context.Context, seq uint64) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	return fn(ctx, seq)
}

func (s *Store) settleInflight(op string, err error) {
	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.rebuildViewLocked()
	}
	s.loading = s.inflight > 0 || len(s.pending) > 0
	s.mu.Unlock()

	if err != nil {
		s.met.IncMutation(op, resultFailure)
	} else {
		s.met.IncMutation(op, resultSuccess)
	}
	s.notify()
}

// await blocks until the pending edit settles. The dispatch keeps running if
// the caller gives up; state still converges.
func (s *Store) await(ctx context.Context, p *pendingLine) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "canceled while waiting for cart mutation")
	}
}

// upsertPendingLocked records or replaces the pending edit for a line.
// Callers hold mu.
func (s *Store) upsertPendingLocked(lineID string, quantity int, merchandiseID string) (*pendingLine, bool) {
	if p, ok := s.pending[lineID]; ok {
		p.quantity = quantity
		switch {
		case quantity == 0:
			// Removal wins over any pending variant change.
			p.merchandiseID = ""
		case merchandiseID != "":
			p.merchandiseID = merchandiseID
		}
		return p, true
	}
	p := &pendingLine{
		quantity:      quantity,
		merchandiseID: merchandiseID,
		done:          make(chan struct{}),
	}
	s.pending[lineID] = p
	s.loading = true
	return p, false
}

// applySnapshotLocked installs a remote snapshot unless a newer dispatch has
// already been applied; a late response from an older write never rolls the
// view back. Callers hold mu.
func (s *Store) applySnapshotLocked(seq uint64, snap *Cart) {
	if snap == nil || seq < s.applied {
		return
	}
	s.applied = seq
	s.cart = snap.Clone()
	s.rebuildViewLocked()
}

// rebuildViewLocked recomputes the displayed snapshot from the last
// known-good cart plus any still-pending optimistic edits. Callers hold mu.
func (s *Store) rebuildViewLocked() {
	s.view = s.cart.Clone()
	if s.view == nil {
		return
	}
	for lineID, p := range s.pending {
		idx := s.view.FindLine(lineID)
		if idx < 0 {
			continue
		}
		if p.quantity == 0 {
			s.view.TotalQuantity -= s.view.Lines[idx].Quantity
			s.view.Lines = append(s.view.Lines[:idx], s.view.Lines[idx+1:]...)
			continue
		}
		s.view.TotalQuantity += p.quantity - s.view.Lines[idx].Quantity
		s.view.Lines[idx].Quantity = p.quantity
	}
}

func (s *Store) optimisticSetQuantityLocked(lineID string, quantity int) {
	idx := s.view.FindLine(lineID)
	if idx < 0 {
		return
	}
	s.view.TotalQuantity += quantity - s.view.Lines[idx].Quantity
	s.view.Lines[idx].Quantity = quantity
}

func (s *Store) optimisticRemoveLocked(lineID string) {
	idx := s.view.FindLine(lineID)
	if idx < 0 {
		return
	}
	s.view.TotalQuantity -= s.view.Lines[idx].Quantity
	s.view.Lines = append(s.view.Lines[:idx], s.view.Lines[idx+1:]...)
}

func (s *Store) currentCartID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return ""
	}
	return s.cart.ID
}

func (s *Store) window() time.Duration {
	if s.cfg.CoalesceWindow <= 0 {
		return time.Millisecond
	}
	return s.cfg.CoalesceWindow
}

func (s *Store) dispatchContext() context.Context {
	return s.log.WithSessionID(context.Background(), s.cfg.SessionID)
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}
