package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

func TestCreateStepDuplicateOrdinal(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 2)

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateStep(ctx, &types.Step{
			RecipeID:    recipeID,
			StepNum:     2,
			Description: "duplicate",
		})
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate ordinal, got %v", err)
	}
}

func TestGetStepNotFound(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 1)

	_, err := store.GetStep(ctx, recipeID, 5)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListStepsOrdered(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 4)

	steps, err := store.ListSteps(ctx, recipeID)
	if err != nil {
		t.Fatalf("ListSteps failed: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("Expected 4 steps, got %d", len(steps))
	}
	for i, s := range steps {
		if s.StepNum != i+1 {
			t.Errorf("Step at index %d has ordinal %d, want %d", i, s.StepNum, i+1)
		}
	}

	count, err := store.StepCount(ctx, recipeID)
	if err != nil {
		t.Fatalf("StepCount failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected count 4, got %d", count)
	}
}

func TestShiftStepsAfterKeepsContiguity(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 5)

	// Remove step 2 and close the gap. Steps 3,4,5 become 2,3,4 in a
	// single statement despite the UNIQUE constraint on (recipe_id, step_num).
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.DeleteStepRow(ctx, recipeID, 2); err != nil {
			return err
		}
		return tx.ShiftStepsAfter(ctx, recipeID, 2)
	})
	if err != nil {
		t.Fatalf("Shift transaction failed: %v", err)
	}

	steps, err := store.ListSteps(ctx, recipeID)
	if err != nil {
		t.Fatalf("ListSteps failed: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("Expected 4 steps after delete, got %d", len(steps))
	}
	wantTitles := []string{"Chop", "Simmer", "Reduce", "Plate"}
	for i, s := range steps {
		if s.StepNum != i+1 {
			t.Errorf("Step at index %d has ordinal %d, want %d", i, s.StepNum, i+1)
		}
		if s.Title == nil || *s.Title != wantTitles[i] {
			t.Errorf("Step %d title = %v, want %q", i+1, s.Title, wantTitles[i])
		}
	}
}

func TestSwapStepNums(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 3)

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.SwapStepNums(ctx, recipeID, 2, 3)
	})
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	step2, err := store.GetStep(ctx, recipeID, 2)
	if err != nil {
		t.Fatalf("GetStep(2) failed: %v", err)
	}
	if step2.Title == nil || *step2.Title != "Simmer" {
		t.Errorf("Step 2 title = %v, want %q", step2.Title, "Simmer")
	}

	step3, err := store.GetStep(ctx, recipeID, 3)
	if err != nil {
		t.Fatalf("GetStep(3) failed: %v", err)
	}
	if step3.Title == nil || *step3.Title != "Saute" {
		t.Errorf("Step 3 title = %v, want %q", step3.Title, "Saute")
	}
}

func TestSwapStepNumsMissingRow(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 2)

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.SwapStepNums(ctx, recipeID, 2, 3)
	})
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity swapping with missing row, got %v", err)
	}

	// The failed transaction must have rolled back: ordinals unchanged.
	steps, err := store.ListSteps(ctx, recipeID)
	if err != nil {
		t.Fatalf("ListSteps failed: %v", err)
	}
	for i, s := range steps {
		if s.StepNum != i+1 {
			t.Errorf("Step at index %d has ordinal %d after rollback, want %d", i, s.StepNum, i+1)
		}
	}
}

func TestDeleteStepRowNotFound(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	recipeID := newTestRecipe(t, store, 1)

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteStepRow(ctx, recipeID, 9)
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting missing row, got %v", err)
	}
}
