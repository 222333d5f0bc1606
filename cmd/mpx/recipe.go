package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mirepoix/mirepoix/internal/stepgraph"
	"github.com/mirepoix/mirepoix/internal/types"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Create, list, and inspect recipes",
}

var recipeCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		recipe := &types.Recipe{Title: args[0], Description: description}
		if err := store.CreateRecipe(rootCtx, recipe, actor); err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(recipe)
		}
		successColor.Printf("Created recipe %s\n", recipe.ID)
		return nil
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes, err := store.ListRecipes(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(recipes)
		}
		for _, r := range recipes {
			fmt.Printf("%s  %s\n", recipeStyle.Render(r.ID), r.Title)
		}
		return nil
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Show a recipe with its steps, ingredients, and dependency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipeID := args[0]
		engine := stepgraph.New(store)

		var (
			recipe *types.Recipe
			steps  []*types.Step
			edges  []*types.RecipeEdge
		)
		// The three reads are independent; fetch them concurrently.
		g, ctx := errgroup.WithContext(rootCtx)
		g.Go(func() (err error) {
			recipe, err = store.GetRecipe(ctx, recipeID)
			return err
		})
		g.Go(func() (err error) {
			steps, err = store.ListSteps(ctx, recipeID)
			return err
		})
		g.Go(func() (err error) {
			edges, err = engine.LoadRecipeEdges(ctx, recipeID)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"recipe": recipe,
				"steps":  steps,
				"edges":  edges,
			})
		}

		fmt.Println(recipeStyle.Render(recipe.Title) + dimStyle.Render("  ("+recipe.ID+")"))
		if recipe.Description != "" {
			fmt.Println(recipe.Description)
		}
		fmt.Println()

		// Index edges by consumer for inline display under each step.
		producersOf := make(map[int][]int)
		for _, e := range edges {
			producersOf[e.InputStep] = append(producersOf[e.InputStep], e.OutputStep)
		}

		for _, s := range steps {
			title := ""
			if s.Title != nil {
				title = *s.Title
			}
			fmt.Printf("%s %s\n", ordinalStyle.Render(fmt.Sprintf("%2d.", s.StepNum)), headerStyle.Render(title))
			fmt.Printf("    %s\n", s.Description)

			uses, err := store.GetIngredientUses(rootCtx, recipeID, s.StepNum)
			if err != nil {
				return err
			}
			for _, u := range uses {
				line := u.Name
				if u.Quantity != "" {
					line = u.Quantity + " " + u.Name
				}
				fmt.Printf("    %s\n", dimStyle.Render("+ "+line))
			}
			if producers := producersOf[s.StepNum]; len(producers) > 0 {
				fmt.Printf("    %s\n", dimStyle.Render("uses "+stepgraph.FormatStepList(producers)))
			}
		}
		return nil
	},
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete <recipe-id>",
	Short: "Delete a recipe and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Printf("Delete recipe %s and all its steps? [y/N] ", args[0])
			var answer string
			_, _ = fmt.Scanln(&answer)
			if !strings.EqualFold(answer, "y") {
				fmt.Println("Aborted")
				return nil
			}
		}
		if err := store.DeleteRecipe(rootCtx, args[0]); err != nil {
			return err
		}
		successColor.Printf("Deleted recipe %s\n", args[0])
		return nil
	},
}

func init() {
	recipeCreateCmd.Flags().String("description", "", "Recipe description")
	recipeDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
	recipeCmd.AddCommand(recipeCreateCmd, recipeListCmd, recipeShowCmd, recipeDeleteCmd)
	rootCmd.AddCommand(recipeCmd)
}
