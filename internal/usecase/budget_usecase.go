package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrBudgetNotFound       = errors.New("budget not found")
	ErrInvalidBudgetID      = fmt.Errorf("%w: invalid budget id", errs.ErrValidation)
	ErrInvalidBudgetTitle   = fmt.Errorf("%w: title is required", errs.ErrValidation)
	ErrEmptyBudget          = fmt.Errorf("%w: subtotal must be greater than zero", errs.ErrValidation)
	ErrCustomerRequired     = fmt.Errorf("%w: customer is required to notify", errs.ErrValidation)
	ErrInvalidBudgetStatus  = fmt.Errorf("%w: unknown budget status", errs.ErrValidation)
	ErrEmptyPatch           = fmt.Errorf("%w: nothing to update", errs.ErrValidation)
	ErrUnexpectedRepository = errors.New("repository returned an empty budget")
	ErrBudgetConflict       = fmt.Errorf("budget kept changing during the update: %w", entities.ErrStaleBudget)
)

// maxUpdateAttempts bounds how often a patch is re-applied to a fresher record.
const maxUpdateAttempts = 3

// CreateBudgetInput is what a caller supplies to open a new budget.
// Totals, status, id and number are always derived server side.
type CreateBudgetInput struct {
	Title             string
	CustomerID        string
	Items             []entities.BudgetItem
	Discount          entities.Discount
	PaymentConditions string
	PaymentMethods    []string
	DrawingRef        string
	Notify            bool
}

// BudgetPatch changes only the non-nil fields.
type BudgetPatch struct {
	Title             *string
	CustomerID        *string
	Items             *[]entities.BudgetItem
	Discount          *entities.Discount
	Status            *entities.BudgetStatus
	PaymentConditions *string
	PaymentMethods    *[]string
	DrawingRef        *string
}

func (p BudgetPatch) empty() bool {
	return p.Title == nil && p.CustomerID == nil && p.Items == nil && p.Discount == nil &&
		p.Status == nil && p.PaymentConditions == nil && p.PaymentMethods == nil && p.DrawingRef == nil
}

// BudgetResult is a committed budget plus any notification warnings.
type BudgetResult struct {
	Budget   entities.Budget
	Warnings []NotificationWarning
}

// IBudgetUseCase is the budget lifecycle manager.
//
// The local cache is written only after the repository confirms a mutation,
// so readers of Cached/Snapshot never see unconfirmed state. Entries never
// move back to an older version, and a confirmed delete is not undone by a
// read that started before it.
type IBudgetUseCase interface {
	Create(ctx context.Context, in CreateBudgetInput) (BudgetResult, error)
	Update(ctx context.Context, id string, patch BudgetPatch) (BudgetResult, error)
	TransitionStatus(ctx context.Context, id string, status entities.BudgetStatus) (BudgetResult, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (entities.Budget, error)
	List(ctx context.Context) ([]entities.Budget, error)
	Cached(id string) (entities.Budget, bool)
	Snapshot() []entities.Budget
	ShareLink(ctx context.Context, id string) entities.LinkResult
}

type BudgetUseCase struct {
	repo      interfaces.IBudgetRepository
	customers interfaces.ICustomerRepository
	notifier  INotificationDispatcher
	now       func() time.Time

	mu         sync.RWMutex
	cache      map[string]cachedBudget
	seq        uint64
	tombstones map[string]uint64 // id -> seq of the eviction
	inflight   map[uint64]int    // start seq -> running operations
	group      singleflight.Group
}

type cachedBudget struct {
	budget entities.Budget
	seq    uint64
}

var _ IBudgetUseCase = (*BudgetUseCase)(nil)

// NewBudgetUseCase wires the manager. notifier may be nil.
func NewBudgetUseCase(repo interfaces.IBudgetRepository, customers interfaces.ICustomerRepository, notifier INotificationDispatcher) *BudgetUseCase {
	return &BudgetUseCase{
		repo:       repo,
		customers:  customers,
		notifier:   notifier,
		now:        time.Now,
		cache:      make(map[string]cachedBudget),
		tombstones: make(map[string]uint64),
		inflight:   make(map[uint64]int),
	}
}

func (u *BudgetUseCase) Create(ctx context.Context, in CreateBudgetInput) (BudgetResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return BudgetResult{}, ErrInvalidBudgetTitle
	}
	customerID := strings.TrimSpace(in.CustomerID)
	if in.Notify && customerID == "" {
		return BudgetResult{}, ErrCustomerRequired
	}

	discount := in.Discount
	if discount.Type == "" {
		discount = entities.NoDiscount()
	}
	totals, err := money.Price(in.Items, discount)
	if err != nil {
		return BudgetResult{}, err
	}
	if !totals.Subtotal.IsPositive() {
		return BudgetResult{}, ErrEmptyBudget
	}

	customer, err := u.requireCustomer(ctx, customerID)
	if err != nil {
		return BudgetResult{}, err
	}

	start := u.begin()
	defer u.end(start)

	now := u.now().UTC()
	b := entities.Budget{
		ID:                uuid.NewString(),
		Title:             title,
		CustomerID:        customerID,
		Items:             totals.Items,
		SubtotalAmount:    totals.Subtotal,
		Discount:          discount,
		FinalAmount:       totals.Final,
		Status:            entities.BudgetStatusDraft,
		PaymentConditions: strings.TrimSpace(in.PaymentConditions),
		PaymentMethods:    cleanList(in.PaymentMethods),
		DrawingRef:        strings.TrimSpace(in.DrawingRef),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := u.repo.Create(ctx, b)
	if err != nil {
		log.Printf("[budget][usecase] create failed title=%q err=%v", title, err)
		return BudgetResult{}, errs.Persistence(err)
	}
	if created.ID == "" {
		return BudgetResult{}, errs.Persistence(ErrUnexpectedRepository)
	}
	u.place(created, start)
	log.Printf("[budget][usecase] create success id=%s number=%s final=%s", created.ID, created.SequentialNumber, money.Format2(created.FinalAmount))

	warnings := u.dispatch(ctx, entities.BudgetEvent{
		Type:           entities.BudgetEventCreated,
		Budget:         created.Clone(),
		Customer:       customer,
		NotifyCustomer: in.Notify,
		OccurredAt:     created.CreatedAt,
	})
	return BudgetResult{Budget: created.Clone(), Warnings: warnings}, nil
}

func (u *BudgetUseCase) Update(ctx context.Context, id string, patch BudgetPatch) (BudgetResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return BudgetResult{}, ErrInvalidBudgetID
	}
	if patch.empty() {
		return BudgetResult{}, ErrEmptyPatch
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return BudgetResult{}, ErrInvalidBudgetStatus
	}

	start := u.begin()
	defer u.end(start)

	for attempt := 1; ; attempt++ {
		current, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return BudgetResult{}, errs.Persistence(err)
		}
		if current.ID == "" {
			u.evict(id)
			return BudgetResult{}, ErrBudgetNotFound
		}

		next, customer, customerChanged, err := u.applyPatch(ctx, current, patch)
		if err != nil {
			return BudgetResult{}, err
		}

		updated, err := u.repo.Update(ctx, next)
		if errors.Is(err, entities.ErrStaleBudget) {
			if attempt < maxUpdateAttempts {
				log.Printf("[budget][usecase] update raced, retrying id=%s attempt=%d", id, attempt)
				continue
			}
			log.Printf("[budget][usecase] update conflict id=%s attempts=%d", id, attempt)
			return BudgetResult{}, ErrBudgetConflict
		}
		if err != nil {
			log.Printf("[budget][usecase] update failed id=%s err=%v", id, err)
			return BudgetResult{}, errs.Persistence(err)
		}
		if updated.ID == "" {
			u.evict(id)
			return BudgetResult{}, ErrBudgetNotFound
		}
		u.place(updated, start)
		log.Printf("[budget][usecase] update success id=%s status=%s final=%s version=%d", updated.ID, updated.Status, money.Format2(updated.FinalAmount), updated.Version)

		if !customerChanged {
			// the dispatcher only needs it for status emails, a lookup failure is not fatal
			if customer, err = resolveCustomer(ctx, u.customers, updated.CustomerID); err != nil {
				log.Printf("[budget][usecase] customer lookup failed id=%s err=%v", id, err)
			}
		}
		warnings := u.dispatch(ctx, entities.BudgetEvent{
			Type:           entities.BudgetEventUpdated,
			Budget:         updated.Clone(),
			Customer:       customer,
			PreviousStatus: current.Status,
			OccurredAt:     updated.UpdatedAt,
		})
		return BudgetResult{Budget: updated.Clone(), Warnings: warnings}, nil
	}
}

// applyPatch validates patch against current and returns the record to store.
// Version is left as read so the repository can refuse a stale write.
func (u *BudgetUseCase) applyPatch(ctx context.Context, current entities.Budget, patch BudgetPatch) (entities.Budget, entities.Customer, bool, error) {
	var (
		customer entities.Customer
		err      error
	)
	next := current.Clone()
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
		if next.Title == "" {
			return entities.Budget{}, customer, false, ErrInvalidBudgetTitle
		}
	}
	if patch.Status != nil {
		if next.Status, err = current.Status.Transition(*patch.Status); err != nil {
			return entities.Budget{}, customer, false, err
		}
	}
	if patch.PaymentConditions != nil {
		next.PaymentConditions = strings.TrimSpace(*patch.PaymentConditions)
	}
	if patch.PaymentMethods != nil {
		next.PaymentMethods = cleanList(*patch.PaymentMethods)
	}
	if patch.DrawingRef != nil {
		next.DrawingRef = strings.TrimSpace(*patch.DrawingRef)
	}

	customerChanged := false
	if patch.CustomerID != nil {
		next.CustomerID = strings.TrimSpace(*patch.CustomerID)
		customerChanged = next.CustomerID != current.CustomerID
	}
	if customerChanged {
		if customer, err = u.requireCustomer(ctx, next.CustomerID); err != nil {
			return entities.Budget{}, customer, false, err
		}
	}

	if patch.Items != nil || patch.Discount != nil {
		if patch.Items != nil {
			next.Items = *patch.Items
		}
		if patch.Discount != nil {
			next.Discount = *patch.Discount
		}
		if next.Discount.Type == "" {
			next.Discount = entities.NoDiscount()
		}
		totals, err := money.Price(next.Items, next.Discount)
		if err != nil {
			return entities.Budget{}, customer, false, err
		}
		if !totals.Subtotal.IsPositive() {
			return entities.Budget{}, customer, false, ErrEmptyBudget
		}
		next.Items = totals.Items
		next.SubtotalAmount = totals.Subtotal
		next.FinalAmount = totals.Final
	}
	next.UpdatedAt = u.now().UTC()
	return next, customer, customerChanged, nil
}

func (u *BudgetUseCase) TransitionStatus(ctx context.Context, id string, status entities.BudgetStatus) (BudgetResult, error) {
	return u.Update(ctx, id, BudgetPatch{Status: &status})
}

// Delete removes the budget from the repository first and from the cache after.
func (u *BudgetUseCase) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidBudgetID
	}

	ok, err := u.repo.Delete(ctx, id)
	if err != nil {
		log.Printf("[budget][usecase] delete failed id=%s err=%v", id, err)
		return errs.Persistence(err)
	}
	previous, _ := u.Cached(id)
	u.evict(id)
	if !ok {
		return ErrBudgetNotFound
	}
	log.Printf("[budget][usecase] delete success id=%s", id)

	if previous.ID == "" {
		previous = entities.Budget{ID: id}
	}
	u.dispatch(ctx, entities.BudgetEvent{
		Type:       entities.BudgetEventDeleted,
		Budget:     previous,
		OccurredAt: u.now().UTC(),
	})
	return nil
}

func (u *BudgetUseCase) Get(ctx context.Context, id string) (entities.Budget, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Budget{}, ErrInvalidBudgetID
	}
	start := u.begin()
	defer u.end(start)

	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Budget{}, errs.Persistence(err)
	}
	if b.ID == "" {
		u.evict(id)
		return entities.Budget{}, ErrBudgetNotFound
	}
	u.place(b, start)
	return b.Clone(), nil
}

// List reloads every budget and refreshes the cache. Concurrent calls share
// one load. Mutations confirmed while the load was running win over it.
func (u *BudgetUseCase) List(ctx context.Context) ([]entities.Budget, error) {
	v, err, shared := u.group.Do("list", func() (interface{}, error) {
		start := u.begin()
		defer u.end(start)

		list, err := u.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return u.refresh(list, start), nil
	})
	if err != nil {
		log.Printf("[budget][usecase] list failed err=%v", err)
		return nil, errs.Persistence(err)
	}
	if shared {
		log.Printf("[budget][usecase] list shared with a concurrent caller")
	}

	list := v.([]entities.Budget)
	out := make([]entities.Budget, len(list))
	for i, b := range list {
		out[i] = b.Clone()
	}
	sortBudgets(out)
	return out, nil
}

func (u *BudgetUseCase) Cached(id string) (entities.Budget, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	e, ok := u.cache[id]
	if !ok {
		return entities.Budget{}, false
	}
	return e.budget.Clone(), true
}

// Snapshot copies the cache, newest first.
func (u *BudgetUseCase) Snapshot() []entities.Budget {
	u.mu.RLock()
	out := make([]entities.Budget, 0, len(u.cache))
	for _, e := range u.cache {
		out = append(out, e.budget.Clone())
	}
	u.mu.RUnlock()
	sortBudgets(out)
	return out
}

// ShareLink never fails; problems are reported in the result message.
func (u *BudgetUseCase) ShareLink(ctx context.Context, id string) entities.LinkResult {
	b, err := u.Get(ctx, id)
	if err != nil {
		return entities.LinkResult{Message: err.Error()}
	}
	if u.notifier == nil {
		return entities.LinkResult{Message: errLinkGeneratorMissing.Error()}
	}
	customer, err := resolveCustomer(ctx, u.customers, b.CustomerID)
	if err != nil {
		return entities.LinkResult{Message: err.Error()}
	}
	return u.notifier.ShareLink(ctx, b, customer)
}

func (u *BudgetUseCase) requireCustomer(ctx context.Context, id string) (entities.Customer, error) {
	if id == "" {
		return entities.Customer{}, nil
	}
	if u.customers == nil {
		return entities.Customer{}, ErrCustomerNotFound
	}
	c, err := u.customers.GetByID(ctx, id)
	if err != nil {
		return entities.Customer{}, errs.Persistence(err)
	}
	if c.ID == "" {
		return entities.Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (u *BudgetUseCase) dispatch(ctx context.Context, ev entities.BudgetEvent) []NotificationWarning {
	if u.notifier == nil {
		return nil
	}
	return u.notifier.Dispatch(ctx, ev)
}

// begin marks the start of an operation that may write to the cache. Its
// result orders that operation against evictions that happen meanwhile.
func (u *BudgetUseCase) begin() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	start := u.seq
	u.inflight[start]++
	return start
}

// end releases start and forgets tombstones no running operation can trip over.
func (u *BudgetUseCase) end(start uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inflight[start]--; u.inflight[start] <= 0 {
		delete(u.inflight, start)
	}
	oldest, running := uint64(0), false
	for s := range u.inflight {
		if !running || s < oldest {
			oldest, running = s, true
		}
	}
	for id, at := range u.tombstones {
		if !running || at <= oldest {
			delete(u.tombstones, id)
		}
	}
}

// place caches b unless the id was evicted after start or a newer version
// is already cached. Callers hold no lock.
func (u *BudgetUseCase) place(b entities.Budget, start uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.placeLocked(b, start)
}

func (u *BudgetUseCase) placeLocked(b entities.Budget, start uint64) {
	if at, ok := u.tombstones[b.ID]; ok && at > start {
		return
	}
	if e, ok := u.cache[b.ID]; ok && e.budget.Version > b.Version {
		return
	}
	u.seq++
	u.cache[b.ID] = cachedBudget{budget: b.Clone(), seq: u.seq}
}

func (u *BudgetUseCase) evict(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.seq++
	delete(u.cache, id)
	u.tombstones[id] = u.seq
}

// refresh rebuilds the cache from a full listing read after start. Entries
// written after start are kept as they are; older ones missing from the
// listing were deleted elsewhere and are dropped. A listed budget never
// replaces a newer cached version.
func (u *BudgetUseCase) refresh(list []entities.Budget, start uint64) []entities.Budget {
	u.mu.Lock()
	defer u.mu.Unlock()

	old := u.cache
	u.cache = make(map[string]cachedBudget, len(list))
	for id, e := range old {
		if e.seq > start {
			u.cache[id] = e
		}
	}
	for _, b := range list {
		if e, ok := old[b.ID]; ok {
			if _, kept := u.cache[b.ID]; !kept {
				u.cache[b.ID] = e
			}
		}
		u.placeLocked(b, start)
	}

	out := make([]entities.Budget, 0, len(u.cache))
	for _, e := range u.cache {
		out = append(out, e.budget.Clone())
	}
	return out
}

func sortBudgets(list []entities.Budget) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].SequentialNumber > list[j].SequentialNumber
	})
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
