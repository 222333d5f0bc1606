// Package stepgraph implements the step dependency engine: the logic that
// lets a recipe's steps declare "this step consumes the output of an earlier
// step" and keeps that dependency graph valid while steps are created,
// reordered, and deleted.
//
// A step's ordinal is also the identifier used by dependency edges; there is
// no separate stable node ID. Every mutation that changes ordinals (append,
// adjacent swap, delete) therefore atomically rewrites every edge and
// ingredient-use row that mentions the renumbered ordinals, and rejects
// mutations that would produce an edge pointing backward.
//
// Business refusals (deletion blocked by dependents, illegal move, bad
// reference) are expected outcomes: they come back as ValidationResult
// values with user-facing messages, never as Go errors. Only storage faults
// propagate as errors.
package stepgraph

import (
	"errors"

	"github.com/mirepoix/mirepoix/internal/storage"
)

// errRefused aborts a transaction for a business refusal. It never escapes
// the engine: callers translate it into the ValidationResult captured before
// the rollback.
var errRefused = errors.New("operation refused")

// Engine runs all validate-then-mutate operations against a recipe's step
// graph. Each mutation composes its validation reads and writes inside one
// storage transaction; a refused mutation leaves every ordinal and edge
// unchanged.
//
// The engine keeps no state of its own: every validator re-reads from the
// store per call. Recipes are small (tens of steps), so an in-memory cache
// of the graph is not worth its invalidation burden.
type Engine struct {
	store storage.Storage
}

// New creates an Engine backed by the given store.
func New(store storage.Storage) *Engine {
	return &Engine{store: store}
}

// refusal maps the errRefused sentinel back to a nil error so refusals
// travel as data. Any other error is a storage fault and propagates.
func refusal(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, errRefused) {
		return true, nil
	}
	return false, err
}
