package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	nameStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
)

// Column widths of the node table.
const (
	nameWidth  = 36
	titleWidth = 44
	ioWidth    = 60
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered nodes and their display names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), renderNodeTable(reg.Nodes()))

			return nil
		},
	}
}

// renderNodeTable formats one row per node: name, title and the input and
// output signatures, each cell truncated to its column width.
func renderNodeTable(nodes []node.Node) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(cell("NAME", nameWidth) + cell("TITLE", titleWidth) + "SIGNATURE"))
	sb.WriteString("\n")

	for _, n := range nodes {
		sb.WriteString(nameStyle.Render(cell(n.Name, nameWidth)))
		sb.WriteString(cell(n.Title, titleWidth))
		sb.WriteString(dimStyle.Render(runewidth.Truncate(signature(n), ioWidth, "…")))
		sb.WriteString("\n")
	}

	return sb.String()
}

// cell truncates s to width-1 and pads it to width.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width-1, "…"), width)
}

// signature renders "(in, ...) -> (out, ...)" with optional inputs marked.
func signature(n node.Node) string {
	in := make([]string, len(n.Inputs))
	for i, s := range n.Inputs {
		in[i] = s.Name
		if !s.Required {
			in[i] += "?"
		}
	}

	return "(" + strings.Join(in, ", ") + ") -> (" + strings.Join(n.OutputNames(), ", ") + ")"
}
