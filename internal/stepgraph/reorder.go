package stepgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// ReorderStep swaps the step at ordinal with its adjacent neighbor in the
// given direction.
//
// The legality check consults only the swap partner: an adjacent swap
// changes the relative order of exactly one pair, so a dependency between
// either swapped step and any third step is unaffected. The move is refused
// when the pair itself is connected: moving a producer below its adjacent
// consumer (or a consumer above its adjacent producer) would flip that edge
// backward.
//
// On a legal swap the two ordinals are exchanged and every edge and
// ingredient-use row mentioning either ordinal is rewritten, including rows
// connecting the swapped steps to third steps. Swap and rewrite are one
// atomic unit; a refused move leaves all rows unchanged.
func (e *Engine) ReorderStep(ctx context.Context, recipeID string, ordinal int, direction types.MoveDirection) (*types.ValidationResult, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("unknown move direction %q", direction)
	}

	var result *types.ValidationResult

	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, err := tx.GetStep(ctx, recipeID, ordinal); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				result = types.Invalid("Step %d does not exist", ordinal)
				return errRefused
			}
			return err
		}

		partner := ordinal - 1
		if direction == types.MoveDown {
			partner = ordinal + 1
		}

		// The UI is expected not to offer moving the first step up or the
		// last step down, but an attempt must not corrupt state: refuse
		// when the swap partner does not exist.
		if _, err := tx.GetStep(ctx, recipeID, partner); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				if direction == types.MoveUp {
					result = types.Invalid("Cannot move Step %d up because it is already the first step", ordinal)
				} else {
					result = types.Invalid("Cannot move Step %d down because it is already the last step", ordinal)
				}
				return errRefused
			}
			return err
		}

		switch direction {
		case types.MoveDown:
			// Refuse when the neighbor below consumes this step's output.
			blocked, err := tx.EdgeExists(ctx, recipeID, ordinal, partner)
			if err != nil {
				return err
			}
			if blocked {
				result = types.Invalid("Cannot move Step %d to position %d because Step %d uses its output",
					ordinal, partner, partner)
				return errRefused
			}
		case types.MoveUp:
			// Refuse when this step consumes the neighbor above's output.
			blocked, err := tx.EdgeExists(ctx, recipeID, partner, ordinal)
			if err != nil {
				return err
			}
			if blocked {
				result = types.Invalid("Cannot move Step %d to position %d because it uses output from Step %d",
					ordinal, partner, partner)
				return errRefused
			}
		}

		lo, hi := ordinal, partner
		if lo > hi {
			lo, hi = hi, lo
		}
		if err := tx.SwapStepNums(ctx, recipeID, lo, hi); err != nil {
			return err
		}
		if err := tx.RewriteEdgesForSwap(ctx, recipeID, lo, hi); err != nil {
			return err
		}
		if err := tx.RewriteIngredientUsesForSwap(ctx, recipeID, lo, hi); err != nil {
			return err
		}

		if err := tx.AddEvent(ctx, &types.Event{
			RecipeID:  recipeID,
			StepNum:   ordinal,
			EventType: types.EventStepMoved,
			Detail:    fmt.Sprintf("moved %s to position %d", direction, partner),
		}); err != nil {
			return err
		}

		result = types.OK()
		return nil
	})

	refused, err := refusal(err)
	if err != nil {
		return nil, err
	}
	if refused {
		recordRefusal(ctx, "reorder_step")
	} else {
		recordMutation(ctx, "reorder_step")
	}
	return result, nil
}
