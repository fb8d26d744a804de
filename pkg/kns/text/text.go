// Package text provides the text concatenation and string split nodes.
package text

import (
	"context"
	"sort"
	"strings"

	"github.com/karlmeister/kns/pkg/kns"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
)

// SplitSlots is the fixed number of outputs produced by Split.
const SplitSlots = 4

// DefaultSplitDelimiter is used by Split when no delimiter is given.
const DefaultSplitDelimiter = ","

// concatInputs are the optional text slots of the concatenator.
var concatInputs = []string{"text_a", "text_b", "text_c", "text_d", "text_e", "text_f"}

// NormalizeDelimiter turns a literal newline or the two-character escape
// sequence `\n` into a newline. Anything else is returned unchanged.
func NormalizeDelimiter(delimiter string) string {
	if delimiter == "\n" || delimiter == `\n` {
		return "\n"
	}

	return delimiter
}

// Concatenate joins the string values of inputs in lexicographic label order
// using the normalized delimiter. Non-string values are ignored. With clean
// set, each value is trimmed first; values that are empty at that point are
// dropped. Without clean an all-whitespace value counts as non-empty.
func Concatenate(delimiter string, clean bool, inputs map[string]any) string {
	delimiter = NormalizeDelimiter(delimiter)

	labels := make([]string, 0, len(inputs))
	for k := range inputs {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	parts := make([]string, 0, len(labels))
	for _, k := range labels {
		v, ok := inputs[k].(string)
		if !ok {
			continue
		}

		if clean {
			v = strings.TrimSpace(v)
		}

		if v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, delimiter)
}

// Split splits text on every occurrence of delimiter, trims each piece and
// returns the first SplitSlots pieces padded with empty strings. An empty
// delimiter falls back to DefaultSplitDelimiter.
func Split(text, delimiter string) [SplitSlots]string {
	if delimiter == "" {
		delimiter = DefaultSplitDelimiter
	}

	var out [SplitSlots]string
	for i, piece := range strings.Split(text, delimiter) {
		if i == SplitSlots {
			break
		}
		out[i] = strings.TrimSpace(piece)
	}

	return out
}

// Nodes returns a Registry with the TextConcatenator and StringSplit nodes.
func Nodes() *registry.Registry {
	r := registry.New()

	concatSlots := []node.Slot{
		{Name: "delimiter", Type: node.String, Required: true, Default: ", ", Description: `Separator; "\n" means a newline`},
		{Name: "clean_whitespace", Type: node.Combo, Required: true, Choices: []string{"true", "false"}, Description: "Trim each input and drop empty ones"},
	}
	for _, name := range concatInputs {
		concatSlots = append(concatSlots, node.Slot{Name: name, Type: node.String, ForceInput: true})
	}

	splitOutputs := make([]node.Output, SplitSlots)
	for i := range splitOutputs {
		splitOutputs[i] = node.Output{Name: "string_" + string(rune('1'+i)), Type: node.String}
	}

	r.Register(
		node.Node{
			Name:        "TextConcatenator",
			Title:       "Text Concatenator",
			Category:    kns.Category,
			Description: "Joins the connected, non-empty text inputs in label order with a delimiter.",
			Inputs:      concatSlots,
			Outputs:     []node.Output{{Name: "STRING", Type: node.String}},
			Handler:     handleConcatenate,
		},
		node.Node{
			Name:        "StringSplit",
			Title:       "String Split",
			Category:    kns.Category,
			Description: "Splits text on a delimiter into four trimmed parts, padding with empty strings.",
			Inputs: []node.Slot{
				{Name: "text", Type: node.String, Required: true, Default: "", Multiline: true},
				{Name: "delimiter", Type: node.String, Required: true, Default: DefaultSplitDelimiter},
			},
			Outputs: splitOutputs,
			Handler: handleSplit,
		},
	)

	return r
}

func handleConcatenate(_ context.Context, args node.Args) (node.Values, error) {
	inputs := args.Map()
	delete(inputs, "delimiter")
	delete(inputs, "clean_whitespace")

	merged := Concatenate(args.String("delimiter"), args.String("clean_whitespace") == "true", inputs)

	return node.Values{merged}, nil
}

func handleSplit(_ context.Context, args node.Args) (node.Values, error) {
	parts := Split(args.String("text"), args.String("delimiter"))

	out := make(node.Values, len(parts))
	for i, p := range parts {
		out[i] = p
	}

	return out, nil
}
