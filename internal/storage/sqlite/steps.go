package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// GetStep fetches a step by (recipeID, stepNum).
// Returns storage.ErrNotFound when absent.
func (s *SQLiteStorage) GetStep(ctx context.Context, recipeID string, stepNum int) (*types.Step, error) {
	return getStep(ctx, s.db, recipeID, stepNum)
}

func getStep(ctx context.Context, q querier, recipeID string, stepNum int) (*types.Step, error) {
	var step types.Step
	var title sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT recipe_id, step_num, title, description, created_at, updated_at
		FROM steps WHERE recipe_id = ? AND step_num = ?
	`, recipeID, stepNum).Scan(&step.RecipeID, &step.StepNum, &title, &step.Description, &step.CreatedAt, &step.UpdatedAt)
	if err != nil {
		return nil, wrapDBErrorf(err, "get step %d of recipe %s", stepNum, recipeID)
	}
	step.Title = nullableString(title)
	return &step, nil
}

// ListSteps returns every step of a recipe in ordinal order.
// An unknown recipe yields an empty slice, not an error.
func (s *SQLiteStorage) ListSteps(ctx context.Context, recipeID string) ([]*types.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, step_num, title, description, created_at, updated_at
		FROM steps WHERE recipe_id = ? ORDER BY step_num
	`, recipeID)
	if err != nil {
		return nil, wrapDBErrorf(err, "list steps of recipe %s", recipeID)
	}
	defer func() { _ = rows.Close() }()

	var steps []*types.Step
	for rows.Next() {
		var step types.Step
		var title sql.NullString
		if err := rows.Scan(&step.RecipeID, &step.StepNum, &title, &step.Description, &step.CreatedAt, &step.UpdatedAt); err != nil {
			return nil, wrapDBError("scan step", err)
		}
		step.Title = nullableString(title)
		steps = append(steps, &step)
	}
	return steps, rows.Err()
}

// StepCount returns the number of steps in a recipe.
func (s *SQLiteStorage) StepCount(ctx context.Context, recipeID string) (int, error) {
	return stepCount(ctx, s.db, recipeID)
}

func stepCount(ctx context.Context, q querier, recipeID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM steps WHERE recipe_id = ?
	`, recipeID).Scan(&n)
	if err != nil {
		return 0, wrapDBErrorf(err, "count steps of recipe %s", recipeID)
	}
	return n, nil
}

func createStep(ctx context.Context, q querier, step *types.Step) error {
	if err := step.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	now := time.Now()
	step.CreatedAt = now
	step.UpdatedAt = now

	var title interface{}
	if step.Title != nil {
		title = *step.Title
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO steps (recipe_id, step_num, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, step.RecipeID, step.StepNum, title, step.Description, now, now)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return fmt.Errorf("step %d of recipe %s: %w", step.StepNum, step.RecipeID, storage.ErrConflict)
		}
		return wrapDBErrorf(err, "create step %d of recipe %s", step.StepNum, step.RecipeID)
	}
	return nil
}

func deleteStepRow(ctx context.Context, q querier, recipeID string, stepNum int) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM steps WHERE recipe_id = ? AND step_num = ?
	`, recipeID, stepNum)
	if err != nil {
		return wrapDBErrorf(err, "delete step %d of recipe %s", stepNum, recipeID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("delete step rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("step %d of recipe %s: %w", stepNum, recipeID, storage.ErrNotFound)
	}
	return nil
}

// shiftStepsAfter renumbers step k to k-1 for every k > stepNum.
//
// The steps table carries a UNIQUE (recipe_id, step_num) key and SQLite
// enforces it per row mid-UPDATE, so the shift runs in two phases: first
// move the affected rows to the negated target ordinal (cannot collide with
// any live positive ordinal), then flip the sign.
func shiftStepsAfter(ctx context.Context, q querier, recipeID string, stepNum int) error {
	now := time.Now()
	_, err := q.ExecContext(ctx, `
		UPDATE steps SET step_num = -(step_num - 1), updated_at = ?
		WHERE recipe_id = ? AND step_num > ?
	`, now, recipeID, stepNum)
	if err != nil {
		return wrapDBErrorf(err, "shift steps of recipe %s after %d", recipeID, stepNum)
	}
	_, err = q.ExecContext(ctx, `
		UPDATE steps SET step_num = -step_num
		WHERE recipe_id = ? AND step_num < 0
	`, recipeID)
	if err != nil {
		return wrapDBErrorf(err, "finalize step shift of recipe %s", recipeID)
	}
	return nil
}

// swapStepNums exchanges the ordinals of the steps at a and b using the same
// negate-then-fix two-phase pattern as shiftStepsAfter.
func swapStepNums(ctx context.Context, q querier, recipeID string, a, b int) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		UPDATE steps
		SET step_num = CASE step_num WHEN ? THEN -? ELSE -? END, updated_at = ?
		WHERE recipe_id = ? AND step_num IN (?, ?)
	`, a, b, a, now, recipeID, a, b)
	if err != nil {
		return wrapDBErrorf(err, "swap steps %d and %d of recipe %s", a, b, recipeID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("swap steps rows affected", err)
	}
	if n != 2 {
		return fmt.Errorf("swap steps %d and %d of recipe %s: expected 2 rows, got %d: %w",
			a, b, recipeID, n, ErrIntegrity)
	}
	_, err = q.ExecContext(ctx, `
		UPDATE steps SET step_num = -step_num
		WHERE recipe_id = ? AND step_num < 0
	`, recipeID)
	if err != nil {
		return wrapDBErrorf(err, "finalize step swap of recipe %s", recipeID)
	}
	return nil
}
