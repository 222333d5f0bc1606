package stepgraph

import (
	"context"
	"fmt"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// CreateStep appends a step to the recipe at ordinal N+1 and persists its
// declared inputs: one dependency edge per referenced earlier step, plus any
// ingredient uses. The reference scan, the at-least-one-input rule, and all
// writes run inside one transaction.
//
// Refusals (bad reference, no inputs) come back as an invalid
// ValidationResult with nothing persisted. A missing recipe is a caller
// error and surfaces as a Go error wrapping storage.ErrNotFound.
func (e *Engine) CreateStep(ctx context.Context, recipeID string, title *string, description string, references []int, ingredients []*types.IngredientUse) (*types.ValidationResult, error) {
	var result *types.ValidationResult

	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, err := tx.GetRecipe(ctx, recipeID); err != nil {
			return fmt.Errorf("create step: %w", err)
		}

		count, err := tx.StepCount(ctx, recipeID)
		if err != nil {
			return err
		}
		nextOrdinal := count + 1

		if res := ValidateNewStepReferences(nextOrdinal, count, references); !res.Valid {
			result = res
			return errRefused
		}
		if len(references) == 0 && len(ingredients) == 0 {
			result = types.Invalid(MsgNoInputs)
			return errRefused
		}

		if err := tx.CreateStep(ctx, &types.Step{
			RecipeID:    recipeID,
			StepNum:     nextOrdinal,
			Title:       title,
			Description: description,
		}); err != nil {
			return err
		}

		// The caller's list may repeat a reference; one edge per distinct
		// producer is enough.
		seen := make(map[int]bool, len(references))
		for _, ref := range references {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			if err := tx.AddOutputUse(ctx, &types.StepOutputUse{
				RecipeID:   recipeID,
				OutputStep: ref,
				InputStep:  nextOrdinal,
			}); err != nil {
				return err
			}
		}

		for _, ing := range ingredients {
			ing.RecipeID = recipeID
			ing.StepNum = nextOrdinal
			if err := tx.AddIngredientUse(ctx, ing); err != nil {
				return err
			}
		}

		if err := tx.AddEvent(ctx, &types.Event{
			RecipeID:  recipeID,
			StepNum:   nextOrdinal,
			EventType: types.EventStepCreated,
			Detail:    fmt.Sprintf("%d output uses, %d ingredient uses", len(seen), len(ingredients)),
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
		recordRefusal(ctx, "create_step")
	} else {
		recordMutation(ctx, "create_step")
	}
	return result, nil
}
