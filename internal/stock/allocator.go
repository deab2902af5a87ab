package stock

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

// PlanLine is one draw from one batch.
type PlanLine struct {
	BatchID string          `json:"batch_id"`
	Take    decimal.Decimal `json:"take"`
}

// Plan is the allocator's proposed breakdown for an outbound request. A plan
// with Fulfilled < Requested is partial; that is a normal planning result,
// not an error, and the caller decides whether to accept it.
type Plan struct {
	ID          string          `json:"id"`
	ProductCode string          `json:"product_code"`
	Requested   decimal.Decimal `json:"requested"`
	Fulfilled   decimal.Decimal `json:"fulfilled"`
	Breakdown   []PlanLine      `json:"breakdown"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Partial reports whether the plan covers less than was requested.
func (p Plan) Partial() bool {
	return p.Fulfilled.LessThan(p.Requested)
}

// Planner builds pick plans by walking a product's batches in drain-priority
// order: lowest location score first, so staging and reserve areas empty
// before long-term racks. Pending plans reserve their claims, so concurrent
// plans for the same product account for each other before being applied.
type Planner struct {
	store  *Store
	scorer bins.Scorer

	mu      sync.Mutex
	pending map[string]Plan
}

// NewPlanner builds a Planner over a store.
func NewPlanner(store *Store, scorer bins.Scorer) *Planner {
	return &Planner{store: store, scorer: scorer, pending: make(map[string]Plan)}
}

// Plan proposes which batches to draw from to satisfy requested units. The
// plan is held as a pending reservation until applied or released.
func (p *Planner) Plan(productCode string, requested decimal.Decimal) (Plan, error) {
	if requested.Sign() <= 0 {
		return Plan{}, fmt.Errorf("%w: requested %s", ErrInvalidQuantity, requested)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	claims := p.claimedLocked(productCode)
	batches := p.store.BatchesFor(productCode)
	sort.SliceStable(batches, func(i, j int) bool {
		si := p.scorer.Best(batches[i].Locations)
		sj := p.scorer.Best(batches[j].Locations)
		if si != sj {
			return si < sj
		}
		return batches[i].UpdatedAt.Before(batches[j].UpdatedAt)
	})

	plan := Plan{
		ID:          uuid.NewString(),
		ProductCode: productCode,
		Requested:   requested,
		CreatedAt:   time.Now().UTC(),
	}
	remaining := requested
	for _, b := range batches {
		if remaining.Sign() <= 0 {
			break
		}
		available := b.Quantity.Sub(claims[b.ID])
		if available.Sign() <= 0 {
			continue
		}
		take := decimal.Min(available, remaining)
		plan.Breakdown = append(plan.Breakdown, PlanLine{BatchID: b.ID, Take: take})
		remaining = remaining.Sub(take)
	}
	plan.Fulfilled = requested.Sub(remaining)

	p.pending[plan.ID] = plan
	return plan, nil
}

// Apply executes a pending plan: each line draws from its batch and logs an
// OUTBOUND entry. The draw is validated and applied atomically; if any line
// no longer holds, nothing is mutated and the plan stays pending.
func (p *Planner) Apply(planID, note string) (Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	plan, ok := p.pending[planID]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	if err := p.store.applyPlan(plan, note); err != nil {
		return Plan{}, err
	}
	delete(p.pending, planID)
	return plan, nil
}

// Release drops a pending plan, freeing its reservation.
func (p *Planner) Release(planID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[planID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	delete(p.pending, planID)
	return nil
}

// Pending lists the not-yet-applied plans, most recent first.
func (p *Planner) Pending() []Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Plan, 0, len(p.pending))
	for _, plan := range p.pending {
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// claimedLocked sums per-batch claims held by pending plans for a product.
func (p *Planner) claimedLocked(productCode string) map[string]decimal.Decimal {
	claims := make(map[string]decimal.Decimal)
	for _, plan := range p.pending {
		if plan.ProductCode != productCode {
			continue
		}
		for _, line := range plan.Breakdown {
			claims[line.BatchID] = claims[line.BatchID].Add(line.Take)
		}
	}
	return claims
}

// applyPlan validates every line against live batches, then draws them all
// inside one critical section so a failed line leaves no partial state.
func (s *Store) applyPlan(plan Plan, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range plan.Breakdown {
		b, err := s.batchLocked(line.BatchID)
		if err != nil {
			return err
		}
		if line.Take.GreaterThan(b.Quantity) {
			return fmt.Errorf("%w: batch %s holds %s, plan takes %s",
				ErrInsufficientStock, b.ID, b.Quantity, line.Take)
		}
	}
	for _, line := range plan.Breakdown {
		b := s.batches[line.BatchID]
		info := ""
		if loc, ok := b.PrimaryLocation(); ok {
			info = loc.Code()
		}
		if _, err := s.adjustLocked(b, line.Take.Neg(), TransactionOutbound, info, note, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}
