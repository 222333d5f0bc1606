// Package storage provides shared types for recipe step storage.
//
// The concrete storage implementation lives in the sqlite sub-package.
// This package holds interface and value types that are referenced by both
// the sqlite implementation and its consumers (the stepgraph engine, cmd/mpx).
package storage

import (
	"context"
	"errors"

	"github.com/mirepoix/mirepoix/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on a unique constraint violation or conflicting state.
var ErrConflict = errors.New("conflict")

// ErrInvalidOrdinal is returned when a step number is out of the valid 1..N range
// for an operation that requires an existing ordinal.
var ErrInvalidOrdinal = errors.New("invalid step number")

// Storage is the interface satisfied by *sqlite.SQLiteStorage.
// Consumers depend on this interface rather than on the concrete type so that
// alternative implementations (mocks, proxies, etc.) can be substituted.
type Storage interface {
	// Recipe CRUD
	CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error
	GetRecipe(ctx context.Context, id string) (*types.Recipe, error)
	ListRecipes(ctx context.Context) ([]*types.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	// Step rows
	GetStep(ctx context.Context, recipeID string, stepNum int) (*types.Step, error)
	ListSteps(ctx context.Context, recipeID string) ([]*types.Step, error)
	StepCount(ctx context.Context, recipeID string) (int, error)

	// Dependency queries (pure reads; unknown recipe/step yields empty, not error)
	GetStepDependencies(ctx context.Context, recipeID string, stepNum int) ([]*types.StepDependency, error)
	GetStepUsage(ctx context.Context, recipeID string, stepNum int) ([]*types.StepUsage, error)
	GetRecipeEdges(ctx context.Context, recipeID string) ([]*types.RecipeEdge, error)

	// Ingredient uses
	GetIngredientUses(ctx context.Context, recipeID string, stepNum int) ([]*types.IngredientUse, error)

	// Events
	GetEvents(ctx context.Context, recipeID string, limit int) ([]*types.Event, error)

	// Configuration
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Transactions. All engine mutations (create, delete, reorder) compose
	// their validation reads and writes inside a single transaction.
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
}

// Transaction exposes the subset of storage methods that execute within a
// single database transaction. The stepgraph engine uses it to make each
// validate-then-mutate operation all-or-nothing: if any write fails partway,
// no ordinal or edge change is visible afterward.
//
// Semantics:
//   - All operations share the same database connection
//   - Changes are invisible to other connections until commit
//   - If the callback returns an error or panics, the transaction rolls back
//   - On successful return, the transaction commits
type Transaction interface {
	// Read-your-writes getters
	GetRecipe(ctx context.Context, id string) (*types.Recipe, error)
	GetStep(ctx context.Context, recipeID string, stepNum int) (*types.Step, error)
	StepCount(ctx context.Context, recipeID string) (int, error)
	GetStepDependencies(ctx context.Context, recipeID string, stepNum int) ([]*types.StepDependency, error)
	GetStepUsage(ctx context.Context, recipeID string, stepNum int) ([]*types.StepUsage, error)
	EdgeExists(ctx context.Context, recipeID string, outputStep, inputStep int) (bool, error)

	// Step row mutations
	CreateStep(ctx context.Context, step *types.Step) error
	DeleteStepRow(ctx context.Context, recipeID string, stepNum int) error
	// ShiftStepsAfter decrements the ordinal of every step above stepNum by one.
	ShiftStepsAfter(ctx context.Context, recipeID string, stepNum int) error
	// SwapStepNums exchanges the ordinals of the steps at a and b.
	SwapStepNums(ctx context.Context, recipeID string, a, b int) error

	// Edge mutations
	AddOutputUse(ctx context.Context, use *types.StepOutputUse) error
	// DeleteEdgesTouching removes every edge where stepNum appears as either endpoint.
	DeleteEdgesTouching(ctx context.Context, recipeID string, stepNum int) error
	// ShiftEdgesAfter subtracts one from every edge endpoint greater than stepNum.
	ShiftEdgesAfter(ctx context.Context, recipeID string, stepNum int) error
	// RewriteEdgesForSwap exchanges every edge endpoint mentioning a or b,
	// covering edges that connect either swapped step to third steps.
	RewriteEdgesForSwap(ctx context.Context, recipeID string, a, b int) error

	// Ingredient use mutations (attached by ordinal, same rewrite obligations)
	AddIngredientUse(ctx context.Context, use *types.IngredientUse) error
	DeleteIngredientUses(ctx context.Context, recipeID string, stepNum int) error
	ShiftIngredientUsesAfter(ctx context.Context, recipeID string, stepNum int) error
	RewriteIngredientUsesForSwap(ctx context.Context, recipeID string, a, b int) error

	// Events
	AddEvent(ctx context.Context, event *types.Event) error
}
