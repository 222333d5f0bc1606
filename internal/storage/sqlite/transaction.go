package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// Verify sqliteTxStorage implements storage.Transaction at compile time
var _ storage.Transaction = (*sqliteTxStorage)(nil)

// sqliteTxStorage implements the storage.Transaction interface for SQLite.
// It wraps a dedicated database connection with an active transaction.
type sqliteTxStorage struct {
	conn querier
}

// txBeginMaxElapsed bounds the SQLITE_BUSY retry loop when opening a
// transaction.
const txBeginMaxElapsed = 2 * time.Second

// RunInTransaction executes a function within a database transaction.
//
// The transaction uses BEGIN IMMEDIATE to acquire the write lock early,
// preventing deadlocks when multiple goroutines compete for the same lock.
//
// Lifecycle:
//  1. Acquire a dedicated connection from the pool
//  2. BEGIN IMMEDIATE with retry on SQLITE_BUSY
//  3. Execute the callback with the Transaction interface
//  4. On success: COMMIT
//  5. On error or panic: ROLLBACK, panics re-raised
func (s *SQLiteStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for transaction: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := beginImmediateWithRetry(ctx, conn, txBeginMaxElapsed); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			// Background context so the rollback completes even when ctx is
			// already cancelled.
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(&sqliteTxStorage{conn: conn}); err != nil {
		return err // rollback happens in the defer
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// ── Read-your-writes getters ────────────────────────────────────────────────

func (t *sqliteTxStorage) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	return getRecipe(ctx, t.conn, id)
}

func (t *sqliteTxStorage) GetStep(ctx context.Context, recipeID string, stepNum int) (*types.Step, error) {
	return getStep(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) StepCount(ctx context.Context, recipeID string) (int, error) {
	return stepCount(ctx, t.conn, recipeID)
}

func (t *sqliteTxStorage) GetStepDependencies(ctx context.Context, recipeID string, stepNum int) ([]*types.StepDependency, error) {
	return getStepDependencies(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) GetStepUsage(ctx context.Context, recipeID string, stepNum int) ([]*types.StepUsage, error) {
	return getStepUsage(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) EdgeExists(ctx context.Context, recipeID string, outputStep, inputStep int) (bool, error) {
	return edgeExists(ctx, t.conn, recipeID, outputStep, inputStep)
}

// ── Step row mutations ──────────────────────────────────────────────────────

func (t *sqliteTxStorage) CreateStep(ctx context.Context, step *types.Step) error {
	return createStep(ctx, t.conn, step)
}

func (t *sqliteTxStorage) DeleteStepRow(ctx context.Context, recipeID string, stepNum int) error {
	return deleteStepRow(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) ShiftStepsAfter(ctx context.Context, recipeID string, stepNum int) error {
	return shiftStepsAfter(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) SwapStepNums(ctx context.Context, recipeID string, a, b int) error {
	return swapStepNums(ctx, t.conn, recipeID, a, b)
}

// ── Edge mutations ──────────────────────────────────────────────────────────

func (t *sqliteTxStorage) AddOutputUse(ctx context.Context, use *types.StepOutputUse) error {
	return addOutputUse(ctx, t.conn, use)
}

func (t *sqliteTxStorage) DeleteEdgesTouching(ctx context.Context, recipeID string, stepNum int) error {
	return deleteEdgesTouching(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) ShiftEdgesAfter(ctx context.Context, recipeID string, stepNum int) error {
	return shiftEdgesAfter(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) RewriteEdgesForSwap(ctx context.Context, recipeID string, a, b int) error {
	return rewriteEdgesForSwap(ctx, t.conn, recipeID, a, b)
}

// ── Ingredient use mutations ────────────────────────────────────────────────

func (t *sqliteTxStorage) AddIngredientUse(ctx context.Context, use *types.IngredientUse) error {
	return addIngredientUse(ctx, t.conn, use)
}

func (t *sqliteTxStorage) DeleteIngredientUses(ctx context.Context, recipeID string, stepNum int) error {
	return deleteIngredientUses(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) ShiftIngredientUsesAfter(ctx context.Context, recipeID string, stepNum int) error {
	return shiftIngredientUsesAfter(ctx, t.conn, recipeID, stepNum)
}

func (t *sqliteTxStorage) RewriteIngredientUsesForSwap(ctx context.Context, recipeID string, a, b int) error {
	return rewriteIngredientUsesForSwap(ctx, t.conn, recipeID, a, b)
}

// ── Events ──────────────────────────────────────────────────────────────────

func (t *sqliteTxStorage) AddEvent(ctx context.Context, event *types.Event) error {
	return addEvent(ctx, t.conn, event)
}
