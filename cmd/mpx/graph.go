package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirepoix/mirepoix/internal/stepgraph"
)

var depsCmd = &cobra.Command{
	Use:   "deps <recipe-id> <step-number>",
	Short: "Show which earlier steps a step consumes output from",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ordinal, err := parseOrdinal(args[1])
		if err != nil {
			return err
		}
		engine := stepgraph.New(store)
		deps, err := engine.LoadStepDependencies(rootCtx, args[0], ordinal)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(deps)
		}
		if len(deps) == 0 {
			fmt.Printf("Step %d uses no step outputs\n", ordinal)
			return nil
		}
		for _, d := range deps {
			fmt.Printf("%s %s\n", ordinalStyle.Render(fmt.Sprintf("Step %d", d.OutputStep)), renderTitle(d.OutputTitle))
		}
		return nil
	},
}

var usesCmd = &cobra.Command{
	Use:   "uses <recipe-id> <step-number>",
	Short: "Show which later steps consume a step's output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ordinal, err := parseOrdinal(args[1])
		if err != nil {
			return err
		}
		engine := stepgraph.New(store)
		usage, err := engine.CheckStepUsage(rootCtx, args[0], ordinal)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(usage)
		}
		if len(usage) == 0 {
			fmt.Printf("Step %d is not used by any later step\n", ordinal)
			return nil
		}
		for _, u := range usage {
			fmt.Printf("%s %s\n", ordinalStyle.Render(fmt.Sprintf("Step %d", u.InputStep)), renderTitle(u.InputTitle))
		}
		return nil
	},
}

var edgesCmd = &cobra.Command{
	Use:   "edges <recipe-id>",
	Short: "List every step output dependency in a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := stepgraph.New(store)
		edges, err := engine.LoadRecipeEdges(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(edges)
		}
		for _, e := range edges {
			fmt.Printf("%s -> Step %d  %s\n",
				ordinalStyle.Render(fmt.Sprintf("Step %d", e.OutputStep)),
				e.InputStep,
				dimStyle.Render(renderTitle(e.OutputTitle)))
		}
		return nil
	},
}

// renderTitle marks untitled steps visibly; the underlying data keeps the
// title nil.
func renderTitle(title *string) string {
	if title == nil {
		return dimStyle.Render("(untitled)")
	}
	return *title
}

func init() {
	rootCmd.AddCommand(depsCmd, usesCmd, edgesCmd)
}
