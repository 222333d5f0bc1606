package stepgraph

import (
	"fmt"
	"strings"
)

// FormatStepList renders a sorted ascending list of step ordinals as natural
// language:
//
//	[3]       -> "Step 3"
//	[2 3]     -> "Steps 2 and 3"
//	[3 4 5]   -> "Steps 3, 4, and 5"
//
// The Oxford comma before the final item is kept. The exact wording is
// load-bearing: the deletion and reorder validators splice this into their
// user-facing messages.
func FormatStepList(ordinals []int) string {
	switch len(ordinals) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Step %d", ordinals[0])
	case 2:
		return fmt.Sprintf("Steps %d and %d", ordinals[0], ordinals[1])
	default:
		var b strings.Builder
		b.WriteString("Steps ")
		for _, n := range ordinals[:len(ordinals)-1] {
			fmt.Fprintf(&b, "%d, ", n)
		}
		fmt.Fprintf(&b, "and %d", ordinals[len(ordinals)-1])
		return b.String()
	}
}
