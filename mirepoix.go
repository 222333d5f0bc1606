// Package mirepoix provides a minimal public API for embedding the recipe
// step engine in other Go programs.
//
// Most integrations only need a storage handle and an engine: open a
// database with NewSQLiteStorage, wrap it with New, and call the engine's
// validate and mutate methods. Everything else lives under internal/.
package mirepoix

import (
	"context"

	"github.com/mirepoix/mirepoix/internal/stepgraph"
	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/storage/sqlite"
	"github.com/mirepoix/mirepoix/internal/types"
)

// Core types for working with recipes and their step graphs
type (
	Recipe           = types.Recipe
	Step             = types.Step
	StepOutputUse    = types.StepOutputUse
	IngredientUse    = types.IngredientUse
	StepDependency   = types.StepDependency
	StepUsage        = types.StepUsage
	RecipeEdge       = types.RecipeEdge
	ValidationResult = types.ValidationResult
	MoveDirection    = types.MoveDirection
)

// Move direction constants
const (
	MoveUp   = types.MoveUp
	MoveDown = types.MoveDown
)

// Storage is the persistence interface the engine operates over.
type Storage = storage.Storage

// Engine validates and applies step graph mutations.
type Engine = stepgraph.Engine

// NewSQLiteStorage opens a mirepoix SQLite database for programmatic access.
func NewSQLiteStorage(ctx context.Context, dbPath string) (Storage, error) {
	return sqlite.New(ctx, dbPath)
}

// New creates an engine over the given storage.
func New(store Storage) *Engine {
	return stepgraph.New(store)
}
