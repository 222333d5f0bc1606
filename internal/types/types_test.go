package types

import (
	"strings"
	"testing"
)

func TestRecipeValidate(t *testing.T) {
	r := &Recipe{Title: "Cassoulet"}
	if err := r.Validate(); err != nil {
		t.Errorf("Valid recipe failed validation: %v", err)
	}

	r = &Recipe{}
	if err := r.Validate(); err == nil {
		t.Error("Expected error for empty title")
	}

	r = &Recipe{Title: strings.Repeat("x", 201)}
	if err := r.Validate(); err == nil {
		t.Error("Expected error for oversized title")
	}
}

func TestStepValidate(t *testing.T) {
	title := "Chop"
	valid := &Step{RecipeID: "r-abc12", StepNum: 1, Title: &title, Description: "chop the onions"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid step failed validation: %v", err)
	}

	// Untitled steps are legal.
	untitled := &Step{RecipeID: "r-abc12", StepNum: 2, Description: "rest"}
	if err := untitled.Validate(); err != nil {
		t.Errorf("Untitled step failed validation: %v", err)
	}

	tests := []struct {
		name string
		step *Step
	}{
		{"missing recipe ID", &Step{StepNum: 1, Description: "x"}},
		{"zero ordinal", &Step{RecipeID: "r", StepNum: 0, Description: "x"}},
		{"negative ordinal", &Step{RecipeID: "r", StepNum: -3, Description: "x"}},
		{"empty description", &Step{RecipeID: "r", StepNum: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.step.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestMoveDirectionValid(t *testing.T) {
	if !MoveUp.Valid() || !MoveDown.Valid() {
		t.Error("Expected up and down to be valid directions")
	}
	if MoveDirection("sideways").Valid() {
		t.Error("Expected unknown direction to be invalid")
	}
}

func TestValidationResultConstructors(t *testing.T) {
	if res := OK(); !res.Valid || res.Error != "" {
		t.Errorf("OK() = %+v", res)
	}
	res := Invalid("Cannot delete Step %d because it is used by %s", 1, "Step 2")
	if res.Valid {
		t.Error("Invalid() returned a valid result")
	}
	if res.Error != "Cannot delete Step 1 because it is used by Step 2" {
		t.Errorf("Invalid() message = %q", res.Error)
	}
}
