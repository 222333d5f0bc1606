package stepgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// ValidateStepDeletion decides whether the step may be removed. A step with
// no downstream dependents is deletable; otherwise the refusal names every
// dependent step by ordinal, ascending.
//
// Pure read, no side effects; calling it repeatedly without mutating state
// yields identical results. A non-existent recipe or step has no dependents
// and therefore validates as deletable.
func (e *Engine) ValidateStepDeletion(ctx context.Context, recipeID string, ordinal int) (*types.ValidationResult, error) {
	usage, err := e.store.GetStepUsage(ctx, recipeID, ordinal)
	if err != nil {
		return nil, err
	}
	return deletionResult(ordinal, usage), nil
}

func deletionResult(ordinal int, usage []*types.StepUsage) *types.ValidationResult {
	if len(usage) == 0 {
		return types.OK()
	}
	dependents := make([]int, len(usage))
	for i, u := range usage {
		dependents[i] = u.InputStep
	}
	return types.Invalid("Cannot delete Step %d because it is used by %s", ordinal, FormatStepList(dependents))
}

// DeleteStep removes the step after re-validating inside the transaction.
// On success it discards the step's own upstream edges and ingredient uses,
// removes the row, and shifts every later step down by one, rewriting every
// edge and ingredient-use endpoint above the deleted ordinal. Downstream
// edges cannot exist at this point: validation just guaranteed there are no
// dependents.
//
// A refused deletion leaves the full set of step, edge, and ingredient rows
// unchanged.
func (e *Engine) DeleteStep(ctx context.Context, recipeID string, ordinal int) (*types.ValidationResult, error) {
	var result *types.ValidationResult

	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, err := tx.GetStep(ctx, recipeID, ordinal); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				result = types.Invalid("Step %d does not exist", ordinal)
				return errRefused
			}
			return err
		}

		usage, err := tx.GetStepUsage(ctx, recipeID, ordinal)
		if err != nil {
			return err
		}
		if res := deletionResult(ordinal, usage); !res.Valid {
			result = res
			return errRefused
		}

		if err := tx.DeleteEdgesTouching(ctx, recipeID, ordinal); err != nil {
			return err
		}
		if err := tx.DeleteIngredientUses(ctx, recipeID, ordinal); err != nil {
			return err
		}
		if err := tx.DeleteStepRow(ctx, recipeID, ordinal); err != nil {
			return err
		}
		if err := tx.ShiftStepsAfter(ctx, recipeID, ordinal); err != nil {
			return err
		}
		if err := tx.ShiftEdgesAfter(ctx, recipeID, ordinal); err != nil {
			return err
		}
		if err := tx.ShiftIngredientUsesAfter(ctx, recipeID, ordinal); err != nil {
			return err
		}

		if err := tx.AddEvent(ctx, &types.Event{
			RecipeID:  recipeID,
			StepNum:   ordinal,
			EventType: types.EventStepDeleted,
			Detail:    fmt.Sprintf("steps above %d shifted down", ordinal),
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
		recordRefusal(ctx, "delete_step")
	} else {
		recordMutation(ctx, "delete_step")
	}
	return result, nil
}
