// Package filename provides the SeedFilenameGenerator node, which builds an
// output filename from a prefix, the current time and the seed.
package filename

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/karlmeister/kns/pkg/kns"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/lestrrat-go/strftime"
)

// Defaults are the widget defaults of the generator's slots.
type Defaults struct {
	Prefix     string
	TimeFormat string
	Delimiter  string
	OutputPath string
}

// StockDefaults returns the defaults the node ships with.
func StockDefaults() Defaults {
	return Defaults{
		Prefix:     "ComfyUI",
		TimeFormat: "%Y%m%d_%H%M%S",
		Delimiter:  "_",
		OutputPath: "ComfyUI",
	}
}

// Generator formats filenames. Now and Location default to the wall clock and
// the local time zone.
type Generator struct {
	Now      func() time.Time
	Location *time.Location
}

// Generate joins prefix, the current time formatted with the strftime pattern
// timeFormat, and the decimal seed using delimiter. Conversions that are not
// recognized are kept as written.
func (g Generator) Generate(seed uint64, prefix, timeFormat, delimiter string) (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	loc := time.Local
	if g.Location != nil {
		loc = g.Location
	}

	t := now().In(loc)

	stamp, err := strftime.Format(resolvePattern(timeFormat, t), t, strftime.WithSpecificationSet(Verbs))
	if err != nil {
		return "", fmt.Errorf("filename: time_format %q: %w", timeFormat, err)
	}

	return strings.Join([]string{prefix, stamp, strconv.FormatUint(seed, 10)}, delimiter), nil
}

// Verbs is the default strftime set extended with %f (microseconds),
// %s (Unix seconds), %G, %g and %V (ISO week date) and %P (lowercase am/pm).
var Verbs = newVerbs()

func newVerbs() strftime.SpecificationSet {
	ds := strftime.NewSpecificationSet()

	extra := map[byte]strftime.Appender{
		'f': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return fmt.Appendf(b, "%06d", t.Nanosecond()/int(time.Microsecond))
		}),
		's': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return strconv.AppendInt(b, t.Unix(), 10)
		}),
		'G': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			y, _ := t.ISOWeek()
			return fmt.Appendf(b, "%04d", y)
		}),
		'g': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			y, _ := t.ISOWeek()
			return fmt.Appendf(b, "%02d", y%100)
		}),
		'V': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			_, w := t.ISOWeek()
			return fmt.Appendf(b, "%02d", w)
		}),
		'P': strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			if t.Hour() < 12 {
				return append(b, "am"...)
			}
			return append(b, "pm"...)
		}),
	}
	for verb, a := range extra {
		if err := ds.Set(verb, a); err != nil {
			panic(fmt.Sprintf("filename: register %%%c: %v", verb, err))
		}
	}

	return ds
}

// resolvePattern rewrites p so that it compiles against Verbs. The glibc
// no-padding flag (%-d and friends) is expanded against t, and unknown
// conversions or a trailing % are escaped so they print literally.
func resolvePattern(p string, t time.Time) string {
	var sb strings.Builder
	sb.Grow(len(p))

	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			sb.WriteByte(p[i])
			continue
		}

		if i+1 == len(p) {
			sb.WriteString("%%")
			break
		}

		verb := p[i+1]
		switch {
		case verb == '%':
			sb.WriteString("%%")
			i++
		case verb == '-' && i+2 < len(p) && unpadded(p[i+2], t) != "":
			sb.WriteString(unpadded(p[i+2], t))
			i += 2
		case known(verb):
			sb.WriteByte('%')
			sb.WriteByte(verb)
			i++
		default:
			// The verb byte is copied as a literal on the next pass.
			sb.WriteString("%%")
		}
	}

	return sb.String()
}

func known(verb byte) bool {
	_, err := Verbs.Lookup(verb)
	return err == nil
}

// unpadded formats the numeric conversions that accept the - flag. It returns
// "" for any other verb.
func unpadded(verb byte, t time.Time) string {
	var n int

	switch verb {
	case 'd':
		n = t.Day()
	case 'm':
		n = int(t.Month())
	case 'H':
		n = t.Hour()
	case 'I':
		n = t.Hour() % 12
		if n == 0 {
			n = 12
		}
	case 'M':
		n = t.Minute()
	case 'S':
		n = t.Second()
	case 'j':
		n = t.YearDay()
	case 'y':
		n = t.Year() % 100
	default:
		return ""
	}

	return strconv.Itoa(n)
}

// Nodes returns a Registry with the SeedFilenameGenerator node.
func Nodes(g Generator, d Defaults) *registry.Registry {
	r := registry.New()

	r.Register(node.Node{
		Name:        "SeedFilenameGenerator",
		Title:       "Seed with Filename Generator",
		Category:    kns.Category,
		Description: "Passes the seed through and builds a filename from a prefix, the current time and the seed.",
		Inputs: []node.Slot{
			{Name: "seed", Type: node.Int, Required: true, Default: int64(0), IntMin: node.Ptr(int64(0)), IntMax: node.Ptr(node.MaxSeed)},
			{Name: "filename_prefix", Type: node.String, Required: true, Default: d.Prefix},
			{Name: "time_format", Type: node.String, Required: true, Default: d.TimeFormat, Description: "strftime pattern"},
			{Name: "delimiter", Type: node.String, Required: true, Default: d.Delimiter},
			{Name: "output_path", Type: node.String, Default: d.OutputPath},
		},
		Outputs: []node.Output{
			{Name: "seed", Type: node.Int},
			{Name: "filename", Type: node.String},
			{Name: "output_path", Type: node.String},
		},
		Handler: func(_ context.Context, args node.Args) (node.Values, error) {
			seed, _ := args.Value("seed")

			name, err := g.Generate(args.Uint64("seed"), args.String("filename_prefix"), args.String("time_format"), args.String("delimiter"))
			if err != nil {
				return nil, err
			}

			out, _ := args.Value("output_path")

			return node.Values{seed, name, out}, nil
		},
	})

	return r
}
