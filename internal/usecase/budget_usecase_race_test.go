package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"marcenaria_mdf/internal/adapter/persistence/repository"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/infrastructure/database"
	"marcenaria_mdf/internal/usecase/interfaces"
	mock_interfaces "marcenaria_mdf/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

// pausingRepo wraps a real repository and, once armed, parks the next read of
// the chosen kind after it has hit the database.
type pausingRepo struct {
	interfaces.IBudgetRepository

	mu      sync.Mutex
	pauseOn string
	reached chan struct{}
	release chan struct{}
}

func (p *pausingRepo) arm(op string) (reached, release chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseOn = op
	p.reached = make(chan struct{})
	p.release = make(chan struct{})
	return p.reached, p.release
}

func (p *pausingRepo) hold(op string) {
	p.mu.Lock()
	if p.pauseOn != op {
		p.mu.Unlock()
		return
	}
	p.pauseOn = ""
	reached, release := p.reached, p.release
	p.mu.Unlock()
	close(reached)
	<-release
}

func (p *pausingRepo) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	b, err := p.IBudgetRepository.GetByID(ctx, id)
	p.hold("get")
	return b, err
}

func (p *pausingRepo) List(ctx context.Context) ([]entities.Budget, error) {
	list, err := p.IBudgetRepository.List(ctx)
	p.hold("list")
	return list, err
}

func newSQLiteUseCase(t *testing.T) (*BudgetUseCase, *pausingRepo) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "budgets.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &pausingRepo{IBudgetRepository: repository.NewBudgetSQLiteRepository(db, time.UTC)}
	return NewBudgetUseCase(repo, nil, nil), repo
}

func createApproved(t *testing.T, uc *BudgetUseCase) entities.Budget {
	t.Helper()
	ctx := context.Background()
	res, err := uc.Create(ctx, CreateBudgetInput{Title: "Painel de TV", Items: sampleItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err = uc.TransitionStatus(ctx, res.Budget.ID, entities.BudgetStatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return res.Budget
}

func TestBudgetUseCase_ConcurrentEditKeepsPaid(t *testing.T) {
	ctx := context.Background()
	uc, repo := newSQLiteUseCase(t)
	b := createApproved(t, uc)

	reached, release := repo.arm("get")
	done := make(chan error, 1)
	go func() {
		title := "Painel de TV ripado"
		_, err := uc.Update(ctx, b.ID, BudgetPatch{Title: &title})
		done <- err
	}()

	<-reached
	if _, err := uc.TransitionStatus(ctx, b.ID, entities.BudgetStatusPaid); err != nil {
		t.Fatalf("pay: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("title patch: %v", err)
	}

	stored, err := uc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != entities.BudgetStatusPaid || stored.Title != "Painel de TV ripado" {
		t.Fatalf("expected paid budget with the new title, got status=%s title=%q", stored.Status, stored.Title)
	}
	if cached, _ := uc.Cached(b.ID); cached.Status != entities.BudgetStatusPaid {
		t.Fatalf("cache went back to %s", cached.Status)
	}
}

func TestBudgetUseCase_ConcurrentTransitionsOneWins(t *testing.T) {
	ctx := context.Background()
	uc, repo := newSQLiteUseCase(t)
	res, err := uc.Create(ctx, CreateBudgetInput{Title: "Estante", Items: sampleItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := res.Budget.ID

	reached, release := repo.arm("get")
	done := make(chan error, 1)
	go func() {
		_, err := uc.TransitionStatus(ctx, id, entities.BudgetStatusRejected)
		done <- err
	}()

	<-reached
	if _, err := uc.TransitionStatus(ctx, id, entities.BudgetStatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	close(release)

	// the retry re-validates draft->rejected against approved and must refuse
	if err := <-done; !errors.Is(err, entities.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	stored, _ := uc.Get(ctx, id)
	if stored.Status != entities.BudgetStatusApproved {
		t.Fatalf("expected approved, got %s", stored.Status)
	}
}

func TestBudgetUseCase_ListDoesNotResurrectDeleted(t *testing.T) {
	ctx := context.Background()
	uc, repo := newSQLiteUseCase(t)
	b := createApproved(t, uc)

	reached, release := repo.arm("list")
	type listed struct {
		list []entities.Budget
		err  error
	}
	done := make(chan listed, 1)
	go func() {
		list, err := uc.List(ctx)
		done <- listed{list, err}
	}()

	<-reached
	if err := uc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	close(release)

	got := <-done
	if got.err != nil {
		t.Fatalf("list: %v", got.err)
	}
	if _, ok := uc.Cached(b.ID); ok {
		t.Fatalf("deleted budget is back in the cache")
	}
	if len(got.list) != 0 || len(uc.Snapshot()) != 0 {
		t.Fatalf("expected nothing listed, got %d listed and %d cached", len(got.list), len(uc.Snapshot()))
	}
}

func TestBudgetUseCase_ListKeepsBudgetCreatedMeanwhile(t *testing.T) {
	ctx := context.Background()
	uc, repo := newSQLiteUseCase(t)

	reached, release := repo.arm("list")
	done := make(chan error, 1)
	go func() {
		_, err := uc.List(ctx)
		done <- err
	}()

	<-reached
	res, err := uc.Create(ctx, CreateBudgetInput{Title: "Mesa", Items: sampleItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := uc.Cached(res.Budget.ID); !ok {
		t.Fatalf("budget created during the refresh was dropped")
	}
}

func TestBudgetUseCase_GetDoesNotResurrectDeleted(t *testing.T) {
	ctx := context.Background()
	uc, repo := newSQLiteUseCase(t)
	b := createApproved(t, uc)

	reached, release := repo.arm("get")
	done := make(chan error, 1)
	go func() {
		_, err := uc.Get(ctx, b.ID)
		done <- err
	}()

	<-reached
	if err := uc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := uc.Cached(b.ID); ok {
		t.Fatalf("a read older than the delete put the budget back")
	}
}

func TestBudgetUseCase_Update_StaleWrites(t *testing.T) {
	t.Run("retries on the fresher record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo, nil, nil)

		approved := storedBudget(entities.BudgetStatusApproved)
		approved.Version = 2
		paid := storedBudget(entities.BudgetStatusPaid)
		paid.Version = 3

		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approved, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Budget{}, entities.ErrStaleBudget),
			repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(paid, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b entities.Budget) (entities.Budget, error) {
				if b.Status != entities.BudgetStatusPaid || b.Version != 3 {
					t.Fatalf("patch not re-applied to the stored record: status=%s version=%d", b.Status, b.Version)
				}
				b.Version++
				return b, nil
			}),
		)

		title := "Cozinha gourmet"
		res, err := uc.Update(context.Background(), "b-1", BudgetPatch{Title: &title})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Budget.Status != entities.BudgetStatusPaid || res.Budget.Title != title || res.Budget.Version != 4 {
			t.Fatalf("unexpected result: %+v", res.Budget)
		}
	})

	t.Run("gives up with a conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo, nil, nil)

		repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(storedBudget(entities.BudgetStatusDraft), nil).Times(maxUpdateAttempts)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Budget{}, entities.ErrStaleBudget).Times(maxUpdateAttempts)

		title := "x"
		_, err := uc.Update(context.Background(), "b-1", BudgetPatch{Title: &title})
		if !errors.Is(err, ErrBudgetConflict) || !errors.Is(err, entities.ErrStaleBudget) {
			t.Fatalf("expected ErrBudgetConflict, got %v", err)
		}
		if errors.Is(err, errs.ErrPersistence) {
			t.Fatalf("a lost race is not a storage failure: %v", err)
		}
		if _, ok := uc.Cached("b-1"); ok {
			t.Fatalf("cache written without a confirmed update")
		}
	})

	t.Run("cache never moves to an older version", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo, nil, nil)

		newer := storedBudget(entities.BudgetStatusPaid)
		newer.Version = 5
		older := storedBudget(entities.BudgetStatusApproved)
		older.Version = 4

		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(newer, nil),
			repo.EXPECT().List(gomock.Any()).Return([]entities.Budget{older}, nil),
		)
		_, _ = uc.Get(context.Background(), "b-1")
		if _, err := uc.List(context.Background()); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if cached, _ := uc.Cached("b-1"); cached.Version != 5 || cached.Status != entities.BudgetStatusPaid {
			t.Fatalf("cache regressed to %+v", cached)
		}
	})
}
