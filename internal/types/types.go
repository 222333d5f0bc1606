// Package types defines core data structures for the mirepoix recipe engine.
package types

import (
	"fmt"
	"time"
)

// Recipe is the owning aggregate for steps, step output uses, and
// ingredient uses. All queries against those entities are scoped by
// the recipe ID.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Step represents one instruction in a recipe.
//
// (RecipeID, StepNum) is the composite key. StepNum is simultaneously the
// step's rank in execution order and the node identifier referenced by
// step output uses. There is no separate surrogate ID: every mutation that
// renumbers steps must rewrite the rows that reference the old numbers.
type Step struct {
	RecipeID    string    `json:"recipe_id"`
	StepNum     int       `json:"step_num"`
	Title       *string   `json:"title,omitempty"` // optional; nil is reported as-is, never substituted
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StepOutputUse is a dependency edge: the step at InputStep consumes the
// output produced by the step at OutputStep, within one recipe.
//
// Invariant: OutputStep < InputStep, strictly. This single inequality keeps
// the edge set acyclic by construction; no cycle detection is needed as long
// as every mutation preserves it.
type StepOutputUse struct {
	ID         int64     `json:"id"`
	RecipeID   string    `json:"recipe_id"`
	OutputStep int       `json:"output_step"`
	InputStep  int       `json:"input_step"`
	CreatedAt  time.Time `json:"created_at"`
}

// IngredientUse records an ingredient consumed by a step. Like output uses,
// it is attached by ordinal, so renumbering rewrites these rows too.
type IngredientUse struct {
	ID       int64  `json:"id"`
	RecipeID string `json:"recipe_id"`
	StepNum  int    `json:"step_num"`
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// StepDependency is one upstream dependency of a step: the producing step's
// number paired with its title (nil when the producer has no title).
type StepDependency struct {
	OutputStep  int     `json:"output_step"`
	OutputTitle *string `json:"output_title"`
}

// StepUsage is one downstream dependent of a step: the consuming step's
// number paired with its title.
type StepUsage struct {
	InputStep  int     `json:"input_step"`
	InputTitle *string `json:"input_title"`
}

// RecipeEdge is a full-recipe edge listing entry: the raw edge annotated
// with the producing step's title.
type RecipeEdge struct {
	ID          int64   `json:"id"`
	OutputStep  int     `json:"output_step"`
	InputStep   int     `json:"input_step"`
	OutputTitle *string `json:"output_title"`
}

// ValidationResult is the structured outcome of a validate-then-mutate
// operation. Business refusals (deletion blocked, illegal move, bad
// reference) are expected outcomes and travel as values, never as Go errors;
// only storage faults propagate as errors.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// OK returns a passing validation result.
func OK() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// Invalid returns a failing validation result with the given message.
func Invalid(format string, args ...interface{}) *ValidationResult {
	return &ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// MoveDirection selects which adjacent swap a reorder performs.
type MoveDirection string

const (
	// MoveUp swaps the step with the step at ordinal-1.
	MoveUp MoveDirection = "up"
	// MoveDown swaps the step with the step at ordinal+1.
	MoveDown MoveDirection = "down"
)

// Valid reports whether d is a recognized direction.
func (d MoveDirection) Valid() bool {
	return d == MoveUp || d == MoveDown
}

// EventType classifies audit events recorded alongside mutations.
type EventType string

const (
	EventRecipeCreated EventType = "recipe_created"
	EventStepCreated   EventType = "step_created"
	EventStepDeleted   EventType = "step_deleted"
	EventStepMoved     EventType = "step_moved"
)

// Event is an audit record written in the same transaction as the mutation
// it describes.
type Event struct {
	ID        int64     `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	StepNum   int       `json:"step_num"`
	EventType EventType `json:"event_type"`
	Actor     string    `json:"actor,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks scalar constraints on a recipe before persistence.
func (r *Recipe) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("recipe title is required")
	}
	if len(r.Title) > 200 {
		return fmt.Errorf("recipe title exceeds 200 characters (got %d)", len(r.Title))
	}
	return nil
}

// Validate checks scalar constraints on a step before persistence.
// Ordinal consistency (contiguous 1..N) is the storage layer's concern.
func (s *Step) Validate() error {
	if s.RecipeID == "" {
		return fmt.Errorf("step recipe ID is required")
	}
	if s.StepNum < 1 {
		return fmt.Errorf("step number must be positive (got %d)", s.StepNum)
	}
	if s.Description == "" {
		return fmt.Errorf("step description is required")
	}
	if s.Title != nil && len(*s.Title) > 200 {
		return fmt.Errorf("step title exceeds 200 characters (got %d)", len(*s.Title))
	}
	return nil
}
