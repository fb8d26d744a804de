package text

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDelimiter(t *testing.T) {
	assert.Equal(t, "\n", NormalizeDelimiter("\n"))
	assert.Equal(t, "\n", NormalizeDelimiter(`\n`))
	assert.Equal(t, `\t`, NormalizeDelimiter(`\t`))
	assert.Equal(t, ", ", NormalizeDelimiter(", "))
	assert.Equal(t, `\n\n`, NormalizeDelimiter(`\n\n`))
}

func TestConcatenate(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		clean     bool
		inputs    map[string]any
		want      string
	}{
		{
			name:      "sorted by label and trimmed",
			delimiter: "-",
			clean:     true,
			inputs:    map[string]any{"b": " x ", "a": "y", "c": ""},
			want:      "y-x",
		},
		{
			name:      "whitespace kept without cleaning",
			delimiter: ",",
			inputs:    map[string]any{"a": "  "},
			want:      "  ",
		},
		{
			name:      "whitespace dropped with cleaning",
			delimiter: ",",
			clean:     true,
			inputs:    map[string]any{"a": "  ", "b": "z"},
			want:      "z",
		},
		{
			name:      "escaped newline delimiter",
			delimiter: `\n`,
			inputs:    map[string]any{"a": "x", "b": "y"},
			want:      "x\ny",
		},
		{
			name:      "literal newline delimiter",
			delimiter: "\n",
			inputs:    map[string]any{"a": "x", "b": "y"},
			want:      "x\ny",
		},
		{
			name:      "empty string dropped without cleaning",
			delimiter: "+",
			inputs:    map[string]any{"a": "", "b": "q"},
			want:      "q",
		},
		{
			name:      "non-string values ignored",
			delimiter: " ",
			inputs:    map[string]any{"a": 5, "b": "one", "c": []any{"x"}, "d": "two"},
			want:      "one two",
		},
		{
			name:   "no inputs",
			inputs: map[string]any{},
			want:   "",
		},
		{
			name:  "nil map",
			clean: true,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Concatenate(tt.delimiter, tt.clean, tt.inputs))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		delimiter string
		want      [SplitSlots]string
	}{
		{name: "pads to four", text: "a, b,c", delimiter: ",", want: [SplitSlots]string{"a", "b", "c", ""}},
		{name: "no delimiter occurrence", text: "hello", delimiter: ",", want: [SplitSlots]string{"hello", "", "", ""}},
		{name: "extra pieces dropped", text: "1|2|3|4|5|6", delimiter: "|", want: [SplitSlots]string{"1", "2", "3", "4"}},
		{name: "multi-character delimiter", text: "x :: y", delimiter: "::", want: [SplitSlots]string{"x", "y", "", ""}},
		{name: "empty text", text: "", delimiter: ",", want: [SplitSlots]string{"", "", "", ""}},
		{name: "empty delimiter uses comma", text: "a,b", delimiter: "", want: [SplitSlots]string{"a", "b", "", ""}},
		{name: "empty pieces kept in place", text: ",,c", delimiter: ",", want: [SplitSlots]string{"", "", "c", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text, tt.delimiter))
		})
	}
}

func invoke(t *testing.T, name, args string) registry.Result {
	t.Helper()

	return Nodes().Invoke(context.Background(), registry.Call{
		ID:        "tc1",
		Node:      name,
		Arguments: json.RawMessage(args),
	})
}

func TestConcatenatorNode(t *testing.T) {
	res := invoke(t, "TextConcatenator", `{"delimiter":"-","clean_whitespace":"true","text_b":" x ","text_a":"y","text_c":""}`)

	require.NoError(t, res.Err)
	assert.Equal(t, node.Values{"y-x"}, res.Outputs)
}

func TestConcatenatorNodeDefaults(t *testing.T) {
	// delimiter defaults to ", " and clean_whitespace to its first choice.
	res := invoke(t, "TextConcatenator", `{"text_a":" a ","text_f":"f","text_c":null}`)

	require.NoError(t, res.Err)
	assert.Equal(t, node.Values{"a, f"}, res.Outputs)
}

func TestConcatenatorNodeNoInputs(t *testing.T) {
	res := invoke(t, "TextConcatenator", `{"clean_whitespace":"false"}`)

	require.NoError(t, res.Err)
	assert.Equal(t, node.Values{""}, res.Outputs)
}

func TestConcatenatorNodeRejectsBadFlag(t *testing.T) {
	res := invoke(t, "TextConcatenator", `{"clean_whitespace":"yes"}`)

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, node.ErrInvalidInput)
}

func TestSplitNode(t *testing.T) {
	res := invoke(t, "StringSplit", `{"text":"a, b,c"}`)

	require.NoError(t, res.Err)
	assert.Equal(t, node.Values{"a", "b", "c", ""}, res.Outputs)
}

func TestNodesDeclarations(t *testing.T) {
	r := Nodes()

	assert.Equal(t, map[string]string{
		"TextConcatenator": "Text Concatenator",
		"StringSplit":      "String Split",
	}, r.DisplayNameMappings())

	split, ok := r.Get("StringSplit")
	require.True(t, ok)
	assert.Equal(t, []string{"string_1", "string_2", "string_3", "string_4"}, split.OutputNames())

	concat, ok := r.Get("TextConcatenator")
	require.True(t, ok)
	slot, ok := concat.Slot("text_f")
	require.True(t, ok)
	assert.True(t, slot.ForceInput)
	assert.False(t, slot.Required)
}
