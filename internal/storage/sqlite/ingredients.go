package sqlite

import (
	"context"

	"github.com/mirepoix/mirepoix/internal/types"
)

// GetIngredientUses returns the ingredient uses of a step, ordered by
// insertion. Unknown recipe or step yields an empty slice.
func (s *SQLiteStorage) GetIngredientUses(ctx context.Context, recipeID string, stepNum int) ([]*types.IngredientUse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipe_id, step_num, name, quantity
		FROM ingredient_uses
		WHERE recipe_id = ? AND step_num = ?
		ORDER BY id
	`, recipeID, stepNum)
	if err != nil {
		return nil, wrapDBErrorf(err, "get ingredient uses of step %d in recipe %s", stepNum, recipeID)
	}
	defer func() { _ = rows.Close() }()

	var uses []*types.IngredientUse
	for rows.Next() {
		var use types.IngredientUse
		if err := rows.Scan(&use.ID, &use.RecipeID, &use.StepNum, &use.Name, &use.Quantity); err != nil {
			return nil, wrapDBError("scan ingredient use", err)
		}
		uses = append(uses, &use)
	}
	return uses, rows.Err()
}

func addIngredientUse(ctx context.Context, q querier, use *types.IngredientUse) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO ingredient_uses (recipe_id, step_num, name, quantity)
		VALUES (?, ?, ?, ?)
	`, use.RecipeID, use.StepNum, use.Name, use.Quantity)
	if err != nil {
		return wrapDBErrorf(err, "add ingredient use %q to step %d of recipe %s", use.Name, use.StepNum, use.RecipeID)
	}
	use.ID, err = result.LastInsertId()
	if err != nil {
		return wrapDBError("add ingredient use last insert ID", err)
	}
	return nil
}

func deleteIngredientUses(ctx context.Context, q querier, recipeID string, stepNum int) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM ingredient_uses WHERE recipe_id = ? AND step_num = ?
	`, recipeID, stepNum)
	return wrapDBErrorf(err, "delete ingredient uses of step %d in recipe %s", stepNum, recipeID)
}

// shiftIngredientUsesAfter follows the deleted step's shift: ingredient uses
// attach by ordinal, so their step_num moves with the step rows. No unique
// constraint on the table, a single UPDATE is safe.
func shiftIngredientUsesAfter(ctx context.Context, q querier, recipeID string, stepNum int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE ingredient_uses SET step_num = step_num - 1
		WHERE recipe_id = ? AND step_num > ?
	`, recipeID, stepNum)
	return wrapDBErrorf(err, "shift ingredient uses of recipe %s after step %d", recipeID, stepNum)
}

func rewriteIngredientUsesForSwap(ctx context.Context, q querier, recipeID string, a, b int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE ingredient_uses SET step_num = CASE step_num WHEN ? THEN ? ELSE ? END
		WHERE recipe_id = ? AND step_num IN (?, ?)
	`, a, b, a, recipeID, a, b)
	return wrapDBErrorf(err, "rewrite ingredient uses of recipe %s for swap %d<->%d", recipeID, a, b)
}
