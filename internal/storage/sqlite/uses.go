package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirepoix/mirepoix/internal/types"
)

// GetStepDependencies returns the upstream dependencies of a step: every
// edge whose input is stepNum, paired with the producing step's title and
// ordered by producer ordinal. An unknown recipe or step yields an empty
// slice, not an error; absence of dependencies is indistinguishable from
// absence of the step.
func (s *SQLiteStorage) GetStepDependencies(ctx context.Context, recipeID string, stepNum int) ([]*types.StepDependency, error) {
	return getStepDependencies(ctx, s.db, recipeID, stepNum)
}

func getStepDependencies(ctx context.Context, q querier, recipeID string, stepNum int) ([]*types.StepDependency, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.output_step, st.step_num, st.title
		FROM step_output_uses u
		LEFT JOIN steps st ON st.recipe_id = u.recipe_id AND st.step_num = u.output_step
		WHERE u.recipe_id = ? AND u.input_step = ?
		ORDER BY u.output_step
	`, recipeID, stepNum)
	if err != nil {
		return nil, wrapDBErrorf(err, "get dependencies of step %d in recipe %s", stepNum, recipeID)
	}
	defer func() { _ = rows.Close() }()

	var deps []*types.StepDependency
	for rows.Next() {
		var dep types.StepDependency
		var joined sql.NullInt64
		var title sql.NullString
		if err := rows.Scan(&dep.OutputStep, &joined, &title); err != nil {
			return nil, wrapDBError("scan step dependency", err)
		}
		if !joined.Valid {
			// An edge pointing at a step row that does not exist means the
			// renumbering invariant was violated somewhere. Abort, do not repair.
			return nil, fmt.Errorf("edge %d->%d of recipe %s references missing step %d: %w",
				dep.OutputStep, stepNum, recipeID, dep.OutputStep, ErrIntegrity)
		}
		dep.OutputTitle = nullableString(title)
		deps = append(deps, &dep)
	}
	return deps, rows.Err()
}

// GetStepUsage returns the downstream dependents of a step: every edge whose
// output is stepNum, paired with the consuming step's title and ordered by
// consumer ordinal. Unknown recipe or step yields an empty slice.
func (s *SQLiteStorage) GetStepUsage(ctx context.Context, recipeID string, stepNum int) ([]*types.StepUsage, error) {
	return getStepUsage(ctx, s.db, recipeID, stepNum)
}

func getStepUsage(ctx context.Context, q querier, recipeID string, stepNum int) ([]*types.StepUsage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.input_step, st.step_num, st.title
		FROM step_output_uses u
		LEFT JOIN steps st ON st.recipe_id = u.recipe_id AND st.step_num = u.input_step
		WHERE u.recipe_id = ? AND u.output_step = ?
		ORDER BY u.input_step
	`, recipeID, stepNum)
	if err != nil {
		return nil, wrapDBErrorf(err, "get usage of step %d in recipe %s", stepNum, recipeID)
	}
	defer func() { _ = rows.Close() }()

	var uses []*types.StepUsage
	for rows.Next() {
		var use types.StepUsage
		var joined sql.NullInt64
		var title sql.NullString
		if err := rows.Scan(&use.InputStep, &joined, &title); err != nil {
			return nil, wrapDBError("scan step usage", err)
		}
		if !joined.Valid {
			return nil, fmt.Errorf("edge %d->%d of recipe %s references missing step %d: %w",
				stepNum, use.InputStep, recipeID, use.InputStep, ErrIntegrity)
		}
		use.InputTitle = nullableString(title)
		uses = append(uses, &use)
	}
	return uses, rows.Err()
}

// GetRecipeEdges returns every edge of a recipe, annotated with the producing
// step's title, grouped by consumer: ordered by input_step ascending, then
// output_step ascending.
func (s *SQLiteStorage) GetRecipeEdges(ctx context.Context, recipeID string) ([]*types.RecipeEdge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.output_step, u.input_step, st.step_num, st.title
		FROM step_output_uses u
		LEFT JOIN steps st ON st.recipe_id = u.recipe_id AND st.step_num = u.output_step
		WHERE u.recipe_id = ?
		ORDER BY u.input_step, u.output_step
	`, recipeID)
	if err != nil {
		return nil, wrapDBErrorf(err, "get edges of recipe %s", recipeID)
	}
	defer func() { _ = rows.Close() }()

	var edges []*types.RecipeEdge
	for rows.Next() {
		var edge types.RecipeEdge
		var joined sql.NullInt64
		var title sql.NullString
		if err := rows.Scan(&edge.ID, &edge.OutputStep, &edge.InputStep, &joined, &title); err != nil {
			return nil, wrapDBError("scan recipe edge", err)
		}
		if !joined.Valid {
			return nil, fmt.Errorf("edge %d->%d of recipe %s references missing step %d: %w",
				edge.OutputStep, edge.InputStep, recipeID, edge.OutputStep, ErrIntegrity)
		}
		edge.OutputTitle = nullableString(title)
		edges = append(edges, &edge)
	}
	return edges, rows.Err()
}

func edgeExists(ctx context.Context, q querier, recipeID string, outputStep, inputStep int) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `
		SELECT 1 FROM step_output_uses
		WHERE recipe_id = ? AND output_step = ? AND input_step = ?
		LIMIT 1
	`, recipeID, outputStep, inputStep).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapDBErrorf(err, "check edge %d->%d of recipe %s", outputStep, inputStep, recipeID)
	}
	return true, nil
}

func addOutputUse(ctx context.Context, q querier, use *types.StepOutputUse) error {
	if use.OutputStep >= use.InputStep {
		return fmt.Errorf("edge %d->%d of recipe %s: output must strictly precede input: %w",
			use.OutputStep, use.InputStep, use.RecipeID, ErrIntegrity)
	}
	now := time.Now()
	use.CreatedAt = now
	result, err := q.ExecContext(ctx, `
		INSERT INTO step_output_uses (recipe_id, output_step, input_step, created_at)
		VALUES (?, ?, ?, ?)
	`, use.RecipeID, use.OutputStep, use.InputStep, now)
	if err != nil {
		return wrapDBErrorf(err, "add edge %d->%d of recipe %s", use.OutputStep, use.InputStep, use.RecipeID)
	}
	use.ID, err = result.LastInsertId()
	if err != nil {
		return wrapDBError("add edge last insert ID", err)
	}
	return nil
}

// deleteEdgesTouching removes every edge where stepNum appears as either
// endpoint.
func deleteEdgesTouching(ctx context.Context, q querier, recipeID string, stepNum int) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM step_output_uses
		WHERE recipe_id = ? AND (output_step = ? OR input_step = ?)
	`, recipeID, stepNum, stepNum)
	return wrapDBErrorf(err, "delete edges touching step %d of recipe %s", stepNum, recipeID)
}

// shiftEdgesAfter subtracts one from every edge endpoint greater than
// stepNum. A single CASE UPDATE suffices: every per-row result is a final
// value, so the output_step < input_step CHECK holds throughout. Callers
// must remove edges touching stepNum itself first.
func shiftEdgesAfter(ctx context.Context, q querier, recipeID string, stepNum int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE step_output_uses SET
			output_step = CASE WHEN output_step > ? THEN output_step - 1 ELSE output_step END,
			input_step  = CASE WHEN input_step  > ? THEN input_step  - 1 ELSE input_step  END
		WHERE recipe_id = ? AND (output_step > ? OR input_step > ?)
	`, stepNum, stepNum, recipeID, stepNum, stepNum)
	return wrapDBErrorf(err, "shift edges of recipe %s after step %d", recipeID, stepNum)
}

// rewriteEdgesForSwap exchanges every edge endpoint mentioning a or b,
// covering edges that connect either swapped step to third steps elsewhere
// in the recipe, not only a direct edge between the pair. The reorder
// validator guarantees no direct a->b edge exists, so every per-row result
// satisfies the CHECK.
func rewriteEdgesForSwap(ctx context.Context, q querier, recipeID string, a, b int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE step_output_uses SET
			output_step = CASE output_step WHEN ? THEN ? WHEN ? THEN ? ELSE output_step END,
			input_step  = CASE input_step  WHEN ? THEN ? WHEN ? THEN ? ELSE input_step  END
		WHERE recipe_id = ? AND (output_step IN (?, ?) OR input_step IN (?, ?))
	`, a, b, b, a, a, b, b, a, recipeID, a, b, a, b)
	return wrapDBErrorf(err, "rewrite edges of recipe %s for swap %d<->%d", recipeID, a, b)
}
