package stepgraph

import (
	"context"

	"github.com/mirepoix/mirepoix/internal/types"
)

// LoadStepDependencies returns the upstream dependencies of a step: each
// edge with the given step as consumer, paired with the producing step's
// title, ordered by producer ordinal ascending.
//
// A non-existent recipe or step yields an empty list, not an error: absence
// of dependencies is indistinguishable from absence of the step, and both
// are "nothing to report". A producer with a null title is reported with a
// nil title, never substituted.
func (e *Engine) LoadStepDependencies(ctx context.Context, recipeID string, ordinal int) ([]*types.StepDependency, error) {
	return e.store.GetStepDependencies(ctx, recipeID, ordinal)
}

// CheckStepUsage returns the downstream dependents of a step: each edge with
// the given step as producer, paired with the dependent step's title,
// ordered by consumer ordinal ascending. Unknown recipe or step yields an
// empty list.
func (e *Engine) CheckStepUsage(ctx context.Context, recipeID string, ordinal int) ([]*types.StepUsage, error) {
	return e.store.GetStepUsage(ctx, recipeID, ordinal)
}

// LoadRecipeEdges returns every edge of the recipe, annotated with the
// producing step's title, grouped by consumer: ordered by consumer ordinal
// ascending, then producer ordinal ascending.
func (e *Engine) LoadRecipeEdges(ctx context.Context, recipeID string) ([]*types.RecipeEdge, error) {
	return e.store.GetRecipeEdges(ctx, recipeID)
}
