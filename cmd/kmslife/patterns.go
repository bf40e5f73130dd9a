package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thierryreding/kmslife/life"
)

func init() {
	rootCmd.AddCommand(patternsCmd)
}

var patternsCmd = &cobra.Command{
	Use:   `patterns`,
	Short: `list the built-in seed patterns`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(patternsFunc(cmd, args))
	},
}

var (
	stylePatternName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(`12`))
	stylePatternDesc = lipgloss.NewStyle().Faint(true)
)

func patternsFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		for i, p := range life.Patterns() {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(stylePatternName.Render(p.Name))
			fmt.Println(stylePatternDesc.Render(`  ` + p.Desc))
			fmt.Print(sketch(p))
		}
		return nil
	}
}

// sketch draws the offsets as a small ASCII picture.
func sketch(p *life.Pattern) string {
	bounds := p.Bounds()
	if bounds.Empty() {
		return ``
	}
	live := make(map[image.Point]bool, len(p.Offsets))
	for _, off := range p.Offsets {
		live[off] = true
	}

	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		sb.WriteString(`  `)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if live[image.Pt(x, y)] {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
