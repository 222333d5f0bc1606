package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirepoix/mirepoix/internal/stepgraph"
	"github.com/mirepoix/mirepoix/internal/types"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Add, remove, and reorder recipe steps",
}

var stepAddCmd = &cobra.Command{
	Use:   "add <recipe-id> <description>",
	Short: "Append a step to a recipe",
	Long: `Append a step at the next ordinal. Every step needs at least one input:
an ingredient (--ingredient) or the output of a previous step (--uses).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleFlag, _ := cmd.Flags().GetString("title")
		uses, _ := cmd.Flags().GetIntSlice("uses")
		ingredientFlags, _ := cmd.Flags().GetStringArray("ingredient")

		var title *string
		if titleFlag != "" {
			title = &titleFlag
		}
		ingredients := make([]*types.IngredientUse, 0, len(ingredientFlags))
		for _, raw := range ingredientFlags {
			ingredients = append(ingredients, parseIngredient(raw))
		}

		engine := stepgraph.New(store)
		res, err := engine.CreateStep(rootCtx, args[0], title, args[1], uses, ingredients)
		if err != nil {
			return err
		}
		if !res.Valid {
			refuse(res.Error)
			return nil
		}
		count, err := store.StepCount(rootCtx, args[0])
		if err != nil {
			return err
		}
		successColor.Printf("Added Step %d\n", count)
		return nil
	},
}

// parseIngredient splits "name:quantity" into an ingredient use; a bare name
// has no quantity.
func parseIngredient(raw string) *types.IngredientUse {
	name, quantity, _ := strings.Cut(raw, ":")
	return &types.IngredientUse{Name: strings.TrimSpace(name), Quantity: strings.TrimSpace(quantity)}
}

var stepListCmd = &cobra.Command{
	Use:   "list <recipe-id>",
	Short: "List the steps of a recipe in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := store.ListSteps(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(steps)
		}
		for _, s := range steps {
			title := ""
			if s.Title != nil {
				title = *s.Title
			}
			fmt.Printf("%s %s\n", ordinalStyle.Render(fmt.Sprintf("%2d.", s.StepNum)), title)
		}
		return nil
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:   "delete <recipe-id> <step-number>",
	Short: "Delete a step and renumber the rest",
	Long: `Delete a step. Refused when a later step uses this step's output; the
refusal names every dependent step. On success all later steps shift down
by one and every dependency edge is rewritten to the new numbering.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ordinal, err := parseOrdinal(args[1])
		if err != nil {
			return err
		}
		engine := stepgraph.New(store)

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			res, err := engine.ValidateStepDeletion(rootCtx, args[0], ordinal)
			if err != nil {
				return err
			}
			if !res.Valid {
				refuse(res.Error)
				return nil
			}
			fmt.Printf("Step %d can be deleted\n", ordinal)
			return nil
		}

		res, err := engine.DeleteStep(rootCtx, args[0], ordinal)
		if err != nil {
			return err
		}
		if !res.Valid {
			refuse(res.Error)
			return nil
		}
		successColor.Printf("Deleted Step %d\n", ordinal)
		return nil
	},
}

var stepUpCmd = &cobra.Command{
	Use:   "up <recipe-id> <step-number>",
	Short: "Move a step one position earlier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(args[0], args[1], types.MoveUp)
	},
}

var stepDownCmd = &cobra.Command{
	Use:   "down <recipe-id> <step-number>",
	Short: "Move a step one position later",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(args[0], args[1], types.MoveDown)
	},
}

func runMove(recipeID, rawOrdinal string, direction types.MoveDirection) error {
	ordinal, err := parseOrdinal(rawOrdinal)
	if err != nil {
		return err
	}
	engine := stepgraph.New(store)
	res, err := engine.ReorderStep(rootCtx, recipeID, ordinal, direction)
	if err != nil {
		return err
	}
	if !res.Valid {
		refuse(res.Error)
		return nil
	}
	successColor.Printf("Moved Step %d %s\n", ordinal, direction)
	return nil
}

func parseOrdinal(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid step number %q", raw)
	}
	return n, nil
}

func init() {
	stepAddCmd.Flags().String("title", "", "Optional step title")
	stepAddCmd.Flags().IntSlice("uses", nil, "Previous step numbers whose output this step consumes")
	stepAddCmd.Flags().StringArray("ingredient", nil, "Ingredient as name or name:quantity (repeatable)")
	stepDeleteCmd.Flags().Bool("dry-run", false, "Only check whether the step can be deleted")
	stepCmd.AddCommand(stepAddCmd, stepListCmd, stepDeleteCmd, stepUpCmd, stepDownCmd)
	rootCmd.AddCommand(stepCmd)
}
