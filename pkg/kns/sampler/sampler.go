// Package sampler provides the KSampler configuration nodes: selectors that
// expose the sampler settings as individual outputs and as a single bundle,
// and the matching unpack nodes.
//
// Bundles are positional and untagged. A bundle built with one Layout and
// unpacked with another is silently reinterpreted field by field.
package sampler

import (
	"context"
	"slices"

	"github.com/karlmeister/kns/pkg/kns"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
)

// ExtraSchedulers are appended to the host scheduler list.
var ExtraSchedulers = []string{"AYS SD1", "AYS SDXL", "AYS SVD", "GITS"}

// Enums are the host-owned name lists the selector slots choose from.
type Enums struct {
	Samplers         []string
	Schedulers       []string
	ImpactSchedulers []string
	// ExtraSchedulers replaces the package ExtraSchedulers when non-nil.
	ExtraSchedulers []string
}

// SchedulerChoices returns the host schedulers followed by the extra ones,
// without duplicates.
func (e Enums) SchedulerChoices() []string {
	extra := e.ExtraSchedulers
	if extra == nil {
		extra = ExtraSchedulers
	}

	out := make([]string, 0, len(e.Schedulers)+len(extra))
	for _, s := range slices.Concat(e.Schedulers, extra) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	return out
}

// Field names shared by every layout.
const (
	Seed            = "seed"
	Steps           = "steps"
	CFG             = "cfg"
	SamplerName     = "sampler_name"
	Scheduler       = "scheduler"
	ImpactScheduler = "impact_scheduler"
	Denoise         = "denoise"
)

// Layout is the ordered list of fields a bundle carries.
type Layout []string

var (
	// FullLayout carries the seed and every sampler setting.
	FullLayout = Layout{Seed, Steps, CFG, SamplerName, Scheduler, ImpactScheduler, Denoise}
	// NoSeedLayout is FullLayout without the seed.
	NoSeedLayout = Layout{Steps, CFG, SamplerName, Scheduler, ImpactScheduler, Denoise}
)

// Bundle is an opaque, order-dependent tuple of configuration values.
type Bundle = []any

// Pack collects the layout fields from args in layout order. Absent fields
// are packed as nil.
func Pack(layout Layout, args node.Args) Bundle {
	b := make(Bundle, len(layout))
	for i, name := range layout {
		b[i], _ = args.Value(name)
	}

	return b
}

// Unpack returns the bundle elements for the layout positions. A short bundle
// yields nil for the missing positions; extra elements are ignored.
func Unpack(layout Layout, b Bundle) node.Values {
	out := make(node.Values, len(layout))
	copy(out, b)

	return out
}

// Nodes returns a Registry with the selector and unpack nodes, their COMBO
// slots populated from e.
func Nodes(e Enums) *registry.Registry {
	slots := fieldSlots(e)
	r := registry.New()

	full := layoutSlots(FullLayout, slots)
	noSeed := layoutSlots(NoSeedLayout, slots)
	bundleOut := node.Output{Name: "ksamplerconfig", Type: node.SamplerConfig}
	bundleIn := node.Slot{Name: "ksamplerconfig", Type: node.SamplerConfig, Required: true}

	r.Register(
		node.Node{
			Name:        "KSamplerConfigSelector",
			Title:       "KSampler Config Selector",
			Category:    kns.Category,
			Description: "Outputs the sampler settings individually and as a bundle.",
			Inputs:      full,
			Outputs:     append(layoutOutputs(FullLayout, slots), bundleOut),
			Handler: func(_ context.Context, args node.Args) (node.Values, error) {
				b := Pack(FullLayout, args)
				return append(Unpack(FullLayout, b), b), nil
			},
		},
		node.Node{
			Name:        "KSamplerConfigSelector_Tuple",
			Title:       "KSampler Config Selector With Tuple Output",
			Category:    kns.Category,
			Description: "Packs the sampler settings into a single bundle.",
			Inputs:      full,
			Outputs:     []node.Output{bundleOut},
			Handler:     packHandler(FullLayout),
		},
		node.Node{
			Name:        "KSamplerConfigUnpack",
			Title:       "KSampler Config Tuple",
			Category:    kns.Category,
			Description: "Unpacks a bundle made by a KSampler config selector.",
			Inputs:      []node.Slot{bundleIn},
			Outputs:     layoutOutputs(FullLayout, slots),
			Handler:     unpackHandler(FullLayout),
		},
		node.Node{
			Name:        "KSamplerConfigSelectorNoSeed_Tuple",
			Title:       "KSampler Config Selector Without Seed With Tuple Output",
			Category:    kns.Category,
			Description: "Packs the sampler settings, except the seed, into a single bundle.",
			Inputs:      noSeed,
			Outputs:     []node.Output{bundleOut},
			Handler:     packHandler(NoSeedLayout),
		},
		node.Node{
			Name:        "KSamplerConfigUnpackNoSeed",
			Title:       "KSampler Config Tuple Without Seed",
			Category:    kns.Category,
			Description: "Unpacks a bundle made by the seedless selector.",
			Inputs:      []node.Slot{bundleIn},
			Outputs:     layoutOutputs(NoSeedLayout, slots),
			Handler:     unpackHandler(NoSeedLayout),
		},
	)

	return r
}

func packHandler(layout Layout) node.Handler {
	return func(_ context.Context, args node.Args) (node.Values, error) {
		return node.Values{Pack(layout, args)}, nil
	}
}

func unpackHandler(layout Layout) node.Handler {
	return func(_ context.Context, args node.Args) (node.Values, error) {
		return Unpack(layout, args.Tuple("ksamplerconfig")), nil
	}
}

func fieldSlots(e Enums) map[string]node.Slot {
	return map[string]node.Slot{
		Seed:            {Name: Seed, Type: node.Int, Default: int64(0), IntMin: node.Ptr(int64(0)), IntMax: node.Ptr(node.MaxSeed)},
		Steps:           {Name: Steps, Type: node.Int, Default: int64(20), IntMin: node.Ptr(int64(1)), IntMax: node.Ptr(uint64(10000))},
		CFG:             {Name: CFG, Type: node.Float, Default: 7.0, Min: node.Ptr(0.0), Max: node.Ptr(100.0)},
		SamplerName:     {Name: SamplerName, Type: node.Combo, Choices: e.Samplers},
		Scheduler:       {Name: Scheduler, Type: node.Combo, Choices: e.SchedulerChoices()},
		ImpactScheduler: {Name: ImpactScheduler, Type: node.Combo, Choices: e.ImpactSchedulers},
		Denoise:         {Name: Denoise, Type: node.Float, Default: 1.0, Min: node.Ptr(0.0), Max: node.Ptr(1.0), Step: node.Ptr(0.01)},
	}
}

func layoutSlots(layout Layout, slots map[string]node.Slot) []node.Slot {
	out := make([]node.Slot, len(layout))
	for i, name := range layout {
		out[i] = slots[name]
	}

	return out
}

func layoutOutputs(layout Layout, slots map[string]node.Slot) []node.Output {
	out := make([]node.Output, len(layout))
	for i, name := range layout {
		out[i] = node.Output{Name: name, Type: slots[name].Type}
	}

	return out
}
