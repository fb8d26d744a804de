package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/spf13/cobra"
)

func newCallCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "call <node> [json-inputs|-]",
		Short: "Evaluate one node and print its labelled outputs",
		Long: `Evaluates a node once with the given JSON object of inputs ("-" reads the
object from stdin) and prints the outputs in declaration order.

Example:
  kns call TextConcatenator '{"delimiter":"\\n","text_a":"x","text_b":"y"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}

			var input json.RawMessage
			if len(args) == 2 {
				input = json.RawMessage(args[1])
				if args[1] == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read inputs: %w", err)
					}
					input = data
				}
			}

			res := reg.Invoke(cmd.Context(), registry.Call{
				ID:        uuid.NewString(),
				Node:      args[0],
				Arguments: input,
			})
			if res.Err != nil {
				return res.Err
			}

			n, _ := reg.Get(args[0])

			out, err := node.Codec.MarshalIndent(n.Label(res.Outputs), "", "  ")
			if err != nil {
				return fmt.Errorf("encode outputs: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}
}
