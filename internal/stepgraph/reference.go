package stepgraph

import (
	"github.com/mirepoix/mirepoix/internal/types"
)

// User-facing messages for creation-time reference validation.
const (
	// MsgInvalidStepNumber is returned for a zero or negative reference.
	MsgInvalidStepNumber = "Invalid step number."
	// MsgSelfReference is returned when a step references its own ordinal.
	MsgSelfReference = "Cannot reference the current step."
	// MsgForwardReference is returned for a reference past the highest
	// existing step.
	MsgForwardReference = "Can only reference previous steps."
	// MsgNoInputs is returned when a new step declares neither ingredient
	// uses nor step output uses.
	MsgNoInputs = "Add at least 1 ingredient or 1 step output use before saving this step."
)

// ValidateNewStepReferences checks the "uses output of" references declared
// for a step about to be created at nextOrdinal (always current count + 1;
// creation is append-only). References are validated independently in the
// caller's order, short-circuiting on the first failure:
//
//   - zero or negative: not a step number
//   - equal to nextOrdinal: the step referencing itself
//   - greater than highestExisting: forward reference to a step that does
//     not exist yet
//
// Each surviving reference is guaranteed to satisfy reference < nextOrdinal,
// which is exactly the output < input inequality the edge set needs.
func ValidateNewStepReferences(nextOrdinal, highestExisting int, references []int) *types.ValidationResult {
	for _, ref := range references {
		switch {
		case ref <= 0:
			return types.Invalid(MsgInvalidStepNumber)
		case ref == nextOrdinal:
			return types.Invalid(MsgSelfReference)
		case ref > highestExisting:
			return types.Invalid(MsgForwardReference)
		}
	}
	return types.OK()
}
