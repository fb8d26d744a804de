package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/spf13/cobra"
)

func newDescribeCmd(c *cli) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "describe <node>",
		Short: "Show a node's inputs, defaults, bounds and outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}

			n, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrNotFound, args[0])
			}

			md := nodeMarkdown(n)
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("markdown renderer: %w", err)
			}

			out, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("markdown render: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")

	return cmd
}

// nodeMarkdown documents a node declaration as Markdown.
func nodeMarkdown(n node.Node) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n`%s` in *%s*\n\n", n.Title, n.Name, n.Category)
	if n.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", n.Description)
	}

	sb.WriteString("## Inputs\n\n")
	if len(n.Inputs) == 0 {
		sb.WriteString("None.\n\n")
	} else {
		sb.WriteString("| Name | Type | Required | Default | Range |\n|---|---|---|---|---|\n")
		for _, s := range n.Inputs {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", s.Name, slotType(s), yesNo(s.Required), defaultText(s), rangeText(s))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Outputs\n\n")
	for i, o := range n.Outputs {
		fmt.Fprintf(&sb, "%d. `%s` %s\n", i+1, o.Name, o.Type)
	}

	return sb.String()
}

func slotType(s node.Slot) string {
	t := string(s.Type)
	if s.Type == node.Any {
		t = "any"
	}
	if s.ForceInput {
		t += " (connection)"
	}

	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func defaultText(s node.Slot) string {
	switch {
	case s.Default != nil:
		return fmt.Sprintf("`%q`", fmt.Sprint(s.Default))
	case s.Type == node.Combo && len(s.Choices) > 0:
		return fmt.Sprintf("`%q`", s.Choices[0])
	}
	return ""
}

func rangeText(s node.Slot) string {
	switch s.Type {
	case node.Int:
		lo, hi := "", ""
		if s.IntMin != nil {
			lo = fmt.Sprint(*s.IntMin)
		}
		if s.IntMax != nil {
			hi = fmt.Sprint(*s.IntMax)
		}
		return "[" + lo + ", " + hi + "]"
	case node.Float:
		lo, hi := "", ""
		if s.Min != nil {
			lo = fmt.Sprint(*s.Min)
		}
		if s.Max != nil {
			hi = fmt.Sprint(*s.Max)
		}
		r := "[" + lo + ", " + hi + "]"
		if s.Step != nil {
			r += fmt.Sprintf(" step %v", *s.Step)
		}
		return r
	case node.Combo:
		return fmt.Sprintf("%d choices", len(s.Choices))
	}
	return ""
}
