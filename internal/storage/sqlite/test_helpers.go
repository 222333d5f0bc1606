package sqlite

import (
	"context"
	"testing"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// newTestStore creates an isolated SQLiteStorage for a test.
//
// A private in-memory database would be simplest, but the connection pool
// needs every connection to see the same data, so tests default to a temp
// file per test. Pass a custom dbPath to override.
func newTestStore(t *testing.T, dbPath string) *SQLiteStorage {
	t.Helper()

	if dbPath == "" {
		dbPath = t.TempDir() + "/test.db"
	}

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}

// newTestRecipe creates a recipe with the given number of steps, each step
// titled "Step N title" and described. Returns the recipe ID.
func newTestRecipe(t *testing.T, store *SQLiteStorage, steps int) string {
	t.Helper()
	ctx := context.Background()

	recipe := &types.Recipe{Title: "Test recipe"}
	if err := store.CreateRecipe(ctx, recipe, "test"); err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	for i := 1; i <= steps; i++ {
		addTestStep(t, store, recipe.ID, i)
	}
	return recipe.ID
}

// addTestStep inserts a bare step row at the given ordinal.
func addTestStep(t *testing.T, store *SQLiteStorage, recipeID string, stepNum int) {
	t.Helper()
	ctx := context.Background()

	title := testStepTitle(stepNum)
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateStep(ctx, &types.Step{
			RecipeID:    recipeID,
			StepNum:     stepNum,
			Title:       &title,
			Description: "do the thing",
		})
	})
	if err != nil {
		t.Fatalf("Failed to create step %d: %v", stepNum, err)
	}
}

func testStepTitle(stepNum int) string {
	switch stepNum {
	case 1:
		return "Chop"
	case 2:
		return "Saute"
	case 3:
		return "Simmer"
	case 4:
		return "Reduce"
	default:
		return "Plate"
	}
}
