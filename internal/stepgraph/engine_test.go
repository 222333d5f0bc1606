package stepgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirepoix/mirepoix/internal/storage/sqlite"
	"github.com/mirepoix/mirepoix/internal/types"
)

// newTestEngine creates an engine over a fresh temp-file SQLite store with
// one recipe, returning the engine and the recipe ID.
func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	recipe := &types.Recipe{Title: "Coq au vin"}
	require.NoError(t, store.CreateRecipe(ctx, recipe, "test"))

	return New(store), recipe.ID
}

// addStep appends a step through the engine. Steps without references get a
// single ingredient use so the at-least-one-input rule passes.
func addStep(t *testing.T, e *Engine, recipeID, title string, refs ...int) {
	t.Helper()
	var ingredients []*types.IngredientUse
	if len(refs) == 0 {
		ingredients = append(ingredients, &types.IngredientUse{Name: "onion", Quantity: "1"})
	}
	var tp *string
	if title != "" {
		tp = &title
	}
	res, err := e.CreateStep(context.Background(), recipeID, tp, "do the thing", refs, ingredients)
	require.NoError(t, err)
	require.True(t, res.Valid, "step creation refused: %s", res.Error)
}

// stepNums returns the current ordinals of a recipe in listing order.
func stepNums(t *testing.T, e *Engine, recipeID string) []int {
	t.Helper()
	steps, err := e.store.ListSteps(context.Background(), recipeID)
	require.NoError(t, err)
	nums := make([]int, len(steps))
	for i, s := range steps {
		nums[i] = s.StepNum
	}
	return nums
}

// edgePairs returns the recipe's edge set as (output, input) pairs in
// listing order.
func edgePairs(t *testing.T, e *Engine, recipeID string) [][2]int {
	t.Helper()
	edges, err := e.LoadRecipeEdges(context.Background(), recipeID)
	require.NoError(t, err)
	pairs := make([][2]int, len(edges))
	for i, edge := range edges {
		pairs[i] = [2]int{edge.OutputStep, edge.InputStep}
	}
	return pairs
}

func TestDeleteBlockedByDependent(t *testing.T) {
	// Scenario: steps [1,2,3], edge (1->2).
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Saute", 1)
	addStep(t, e, recipeID, "Plate")

	res, err := e.ValidateStepDeletion(ctx, recipeID, 1)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot delete Step 1 because it is used by Step 2", res.Error)

	// Validation is idempotent: same answer without mutation in between.
	again, err := e.ValidateStepDeletion(ctx, recipeID, 1)
	require.NoError(t, err)
	assert.Equal(t, res, again)

	// Step 3 has no dependents and may go.
	res, err = e.ValidateStepDeletion(ctx, recipeID, 3)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	// The refused deletion must not have touched anything.
	del, err := e.DeleteStep(ctx, recipeID, 1)
	require.NoError(t, err)
	assert.False(t, del.Valid)
	assert.Equal(t, []int{1, 2, 3}, stepNums(t, e, recipeID))
	assert.Equal(t, [][2]int{{1, 2}}, edgePairs(t, e, recipeID))
}

func TestDeleteBlockedNamesAllDependents(t *testing.T) {
	e, recipeID := newTestEngine(t)
	addStep(t, e, recipeID, "Stock")
	addStep(t, e, recipeID, "Reduce", 1)
	addStep(t, e, recipeID, "Glaze", 1)
	addStep(t, e, recipeID, "Finish", 1)

	res, err := e.ValidateStepDeletion(context.Background(), recipeID, 1)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot delete Step 1 because it is used by Steps 2, 3, and 4", res.Error)
}

func TestDeleteShiftsLaterStepsAndEdges(t *testing.T) {
	// Steps [1,2,3], edge (1->3). Deleting step 2 renumbers 3 -> 2 and the
	// edge must follow: (1->3) becomes (1->2).
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Rest")
	addStep(t, e, recipeID, "Saute", 1)

	res, err := e.DeleteStep(ctx, recipeID, 2)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	assert.Equal(t, []int{1, 2}, stepNums(t, e, recipeID))
	assert.Equal(t, [][2]int{{1, 2}}, edgePairs(t, e, recipeID))

	// The shifted step keeps its identity: old step 3's title is now at 2.
	step, err := e.store.GetStep(ctx, recipeID, 2)
	require.NoError(t, err)
	require.NotNil(t, step.Title)
	assert.Equal(t, "Saute", *step.Title)
}

func TestDeleteDiscardsOwnUpstreamEdges(t *testing.T) {
	// Steps [1,2,3]; step 3 uses outputs of 1 and 2. Deleting step 3 must
	// drop both edges and leave [1,2] with an empty edge set.
	e, recipeID := newTestEngine(t)
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Saute")
	addStep(t, e, recipeID, "Combine", 1, 2)

	res, err := e.DeleteStep(context.Background(), recipeID, 3)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	assert.Equal(t, []int{1, 2}, stepNums(t, e, recipeID))
	assert.Empty(t, edgePairs(t, e, recipeID))
}

func TestDeleteMissingStepRefusedGracefully(t *testing.T) {
	e, recipeID := newTestEngine(t)
	addStep(t, e, recipeID, "Chop")

	res, err := e.DeleteStep(context.Background(), recipeID, 7)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Step 7 does not exist", res.Error)
	assert.Equal(t, []int{1}, stepNums(t, e, recipeID))
}

func TestMoveDownBlockedByConsumer(t *testing.T) {
	// Scenario: steps [1,2], edge (1->2). Step 2 uses step 1's output, so
	// step 1 may not move below it.
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Saute", 1)

	res, err := e.ReorderStep(ctx, recipeID, 1, types.MoveDown)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot move Step 1 to position 2 because Step 2 uses its output", res.Error)

	assert.Equal(t, []int{1, 2}, stepNums(t, e, recipeID))
	assert.Equal(t, [][2]int{{1, 2}}, edgePairs(t, e, recipeID))
}

func TestMoveUpBlockedByProducer(t *testing.T) {
	// Scenario: steps [1,2], edge (1->2). Step 2 consumes step 1's output,
	// so it may not move above it.
	e, recipeID := newTestEngine(t)
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Saute", 1)

	res, err := e.ReorderStep(context.Background(), recipeID, 2, types.MoveUp)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot move Step 2 to position 1 because it uses output from Step 1", res.Error)
}

func TestMoveDownRewritesThirdPartyEdges(t *testing.T) {
	// Scenario: steps [1,2,3], edge (1->3) only. Swapping 2 and 3 is legal
	// (no direct edge between them); afterward the step formerly at 3 sits
	// at 2, so the edge must read (1->2).
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Rest")
	addStep(t, e, recipeID, "Saute", 1)

	res, err := e.ReorderStep(ctx, recipeID, 2, types.MoveDown)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	assert.Equal(t, []int{1, 2, 3}, stepNums(t, e, recipeID))
	assert.Equal(t, [][2]int{{1, 2}}, edgePairs(t, e, recipeID))

	// Titles confirm the swap really exchanged the rows.
	step2, err := e.store.GetStep(ctx, recipeID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Saute", *step2.Title)
	step3, err := e.store.GetStep(ctx, recipeID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Rest", *step3.Title)
}

func TestSwapRewritesBothEndpoints(t *testing.T) {
	// Steps [1..4], edges (1->3) and (2->4). Swapping 2 and 3 must rewrite
	// both edges: (1->3) becomes (1->2), (2->4) becomes (3->4).
	e, recipeID := newTestEngine(t)
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Stock")
	addStep(t, e, recipeID, "Saute", 1)
	addStep(t, e, recipeID, "Combine", 2)

	res, err := e.ReorderStep(context.Background(), recipeID, 2, types.MoveDown)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	assert.Equal(t, [][2]int{{1, 2}, {3, 4}}, edgePairs(t, e, recipeID))
}

func TestMoveAtBoundaryRefusedGracefully(t *testing.T) {
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Saute")

	res, err := e.ReorderStep(ctx, recipeID, 1, types.MoveUp)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot move Step 1 up because it is already the first step", res.Error)

	res, err = e.ReorderStep(ctx, recipeID, 2, types.MoveDown)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Cannot move Step 2 down because it is already the last step", res.Error)

	assert.Equal(t, []int{1, 2}, stepNums(t, e, recipeID))
}

func TestMoveFollowsIngredientUses(t *testing.T) {
	// Ingredient uses attach by ordinal, so they must follow their step
	// through a swap.
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop") // onion at step 1
	res, err := e.CreateStep(ctx, recipeID, nil, "add the wine", nil,
		[]*types.IngredientUse{{Name: "red wine", Quantity: "250ml"}})
	require.NoError(t, err)
	require.True(t, res.Valid)

	res, err = e.ReorderStep(ctx, recipeID, 2, types.MoveUp)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	uses, err := e.store.GetIngredientUses(ctx, recipeID, 1)
	require.NoError(t, err)
	require.Len(t, uses, 1)
	assert.Equal(t, "red wine", uses[0].Name)

	uses, err = e.store.GetIngredientUses(ctx, recipeID, 2)
	require.NoError(t, err)
	require.Len(t, uses, 1)
	assert.Equal(t, "onion", uses[0].Name)
}

func TestCreateStepRefusals(t *testing.T) {
	// Scenario: one existing step, next ordinal is 2.
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")

	res, err := e.CreateStep(ctx, recipeID, nil, "self", []int{2}, nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgSelfReference, res.Error)

	res, err = e.CreateStep(ctx, recipeID, nil, "forward", []int{3}, nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgForwardReference, res.Error)

	res, err = e.CreateStep(ctx, recipeID, nil, "no inputs", nil, nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgNoInputs, res.Error)

	// Nothing was persisted by any refusal.
	assert.Equal(t, []int{1}, stepNums(t, e, recipeID))
	assert.Empty(t, edgePairs(t, e, recipeID))
}

func TestCreateStepPersistsEdgesAndIngredients(t *testing.T) {
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Stock")

	res, err := e.CreateStep(ctx, recipeID, nil, "combine everything", []int{1, 2, 1},
		[]*types.IngredientUse{{Name: "thyme"}})
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)

	// Duplicate reference collapsed to one edge per producer.
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}}, edgePairs(t, e, recipeID))

	uses, err := e.store.GetIngredientUses(ctx, recipeID, 3)
	require.NoError(t, err)
	require.Len(t, uses, 1)
	assert.Equal(t, "thyme", uses[0].Name)
}

func TestQueriesReturnEmptyForUnknown(t *testing.T) {
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")

	deps, err := e.LoadStepDependencies(ctx, "r-nope", 1)
	require.NoError(t, err)
	assert.Empty(t, deps)

	uses, err := e.CheckStepUsage(ctx, recipeID, 99)
	require.NoError(t, err)
	assert.Empty(t, uses)

	edges, err := e.LoadRecipeEdges(ctx, "r-nope")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestQueryOrderingAndTitles(t *testing.T) {
	e, recipeID := newTestEngine(t)
	ctx := context.Background()
	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "") // untitled
	addStep(t, e, recipeID, "Saute", 2, 1)
	addStep(t, e, recipeID, "Plate", 3, 1)

	deps, err := e.LoadStepDependencies(ctx, recipeID, 3)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	// Ordered by producer ordinal ascending, null title preserved.
	assert.Equal(t, 1, deps[0].OutputStep)
	require.NotNil(t, deps[0].OutputTitle)
	assert.Equal(t, "Chop", *deps[0].OutputTitle)
	assert.Equal(t, 2, deps[1].OutputStep)
	assert.Nil(t, deps[1].OutputTitle)

	usage, err := e.CheckStepUsage(ctx, recipeID, 1)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, 3, usage[0].InputStep)
	assert.Equal(t, 4, usage[1].InputStep)

	// Full edge set grouped by consumer, producers ascending within.
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {1, 4}, {3, 4}}, edgePairs(t, e, recipeID))
}

func TestEdgeInvariantHoldsAfterMutations(t *testing.T) {
	// Drive a mixed sequence of mutations and assert the core invariant
	// after each: every live edge satisfies output < input, and ordinals
	// are exactly 1..N.
	e, recipeID := newTestEngine(t)
	ctx := context.Background()

	check := func() {
		t.Helper()
		nums := stepNums(t, e, recipeID)
		for i, n := range nums {
			require.Equal(t, i+1, n, "ordinals must be contiguous 1..N")
		}
		for _, pair := range edgePairs(t, e, recipeID) {
			require.Less(t, pair[0], pair[1], "edge %v must point forward", pair)
		}
	}

	addStep(t, e, recipeID, "Chop")
	addStep(t, e, recipeID, "Stock")
	addStep(t, e, recipeID, "Saute", 1)
	addStep(t, e, recipeID, "Combine", 2, 3)
	check()

	res, err := e.ReorderStep(ctx, recipeID, 2, types.MoveUp)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)
	check()

	res, err = e.DeleteStep(ctx, recipeID, 4)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)
	check()

	res, err = e.DeleteStep(ctx, recipeID, 3)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)
	check()
}
