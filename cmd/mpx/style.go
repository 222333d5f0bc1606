package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	recipeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	ordinalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)

	refuseColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
)

// setupStyles disables ANSI styling when requested or when stdout is not a
// terminal, so piped output stays clean.
func setupStyles() {
	disable := noColor ||
		viper.GetBool("no-color") ||
		os.Getenv("NO_COLOR") != "" ||
		!term.IsTerminal(int(os.Stdout.Fd()))

	if disable {
		color.NoColor = true
		plain := lipgloss.NewStyle()
		headerStyle = plain
		recipeStyle = plain
		ordinalStyle = plain
		dimStyle = plain
	}
}

// refuse prints a business refusal and marks the process exit code. Refusals
// are expected outcomes, not faults, so they go to stdout and do not abort
// the command chain.
func refuse(message string) {
	refuseColor.Println(message)
	exitCode = 1
}
