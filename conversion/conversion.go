// Package conversion defines sampler YCbCr conversion descriptors and the
// binding layouts that attach them to descriptor bindings.
package conversion

import (
	"fmt"

	"github.com/gogpu/ycbcr/format"
)

// ColorModel selects the color-space conversion applied after range
// expansion.
type ColorModel uint8

const (
	ModelRGBIdentity   ColorModel = iota // Values are already RGB
	ModelYCbCrIdentity                   // Range expansion only
	ModelYCbCr709
	ModelYCbCr601
	ModelYCbCr2020
)

// Range selects full or narrow (studio) quantization.
type Range uint8

const (
	RangeFull Range = iota
	RangeNarrow
)

// ChromaLocation is the position of subsampled chroma samples relative to
// luma samples along one axis.
type ChromaLocation uint8

const (
	ChromaCositedEven ChromaLocation = iota
	ChromaMidpoint
)

// ComponentSwizzle selects the source of one output channel.
type ComponentSwizzle uint8

const (
	SwizzleIdentity ComponentSwizzle = iota
	SwizzleZero
	SwizzleOne
	SwizzleR
	SwizzleG
	SwizzleB
	SwizzleA
)

// Conversion is an immutable YCbCr conversion descriptor.
type Conversion struct {
	Format        format.Format       `yaml:"format" toml:"format"`
	Model         ColorModel          `yaml:"model" toml:"model"`
	Range         Range               `yaml:"range" toml:"range"`
	ChromaOffsets [2]ChromaLocation   `yaml:"chroma_offsets" toml:"chroma_offsets"`
	Components    [4]ComponentSwizzle `yaml:"components" toml:"components"`
}

// Enabled reports whether the descriptor requests a conversion.
func (c *Conversion) Enabled() bool {
	return c.Format != format.Undefined
}

// Layout resolves descriptor bindings to their immutable conversions.
type Layout interface {
	// Lookup returns one conversion per array element of the binding, or
	// nil if the binding has no conversions.
	Lookup(set, binding uint32) []Conversion
}

// LayoutFunc adapts a function to the Layout interface.
type LayoutFunc func(set, binding uint32) []Conversion

// Lookup calls f(set, binding).
func (f LayoutFunc) Lookup(set, binding uint32) []Conversion {
	return f(set, binding)
}

// PipelineLayout is a Layout built from descriptor-set declarations.
type PipelineLayout struct {
	Sets []SetLayout `yaml:"sets" toml:"sets"`
}

// SetLayout lists the bindings of one descriptor set.
type SetLayout struct {
	Set      uint32          `yaml:"set" toml:"set"`
	Bindings []BindingLayout `yaml:"bindings" toml:"bindings"`
}

// BindingLayout attaches conversions to one binding. The number of
// conversions is the binding's array size.
type BindingLayout struct {
	Binding     uint32       `yaml:"binding" toml:"binding"`
	Conversions []Conversion `yaml:"conversions" toml:"conversions"`
}

// Lookup implements Layout.
func (l *PipelineLayout) Lookup(set, binding uint32) []Conversion {
	if l == nil {
		return nil
	}
	for i := range l.Sets {
		s := &l.Sets[i]
		if s.Set != set {
			continue
		}
		for j := range s.Bindings {
			if s.Bindings[j].Binding == binding && len(s.Bindings[j].Conversions) > 0 {
				return s.Bindings[j].Conversions
			}
		}
	}
	return nil
}

// Bind attaches conversions to (set, binding), replacing earlier ones.
func (l *PipelineLayout) Bind(set, binding uint32, convs ...Conversion) {
	for i := range l.Sets {
		s := &l.Sets[i]
		if s.Set != set {
			continue
		}
		for j := range s.Bindings {
			if s.Bindings[j].Binding == binding {
				s.Bindings[j].Conversions = convs
				return
			}
		}
		s.Bindings = append(s.Bindings, BindingLayout{Binding: binding, Conversions: convs})
		return
	}
	l.Sets = append(l.Sets, SetLayout{
		Set:      set,
		Bindings: []BindingLayout{{Binding: binding, Conversions: convs}},
	})
}

// Validate checks that every conversion names known enumerants.
func (l *PipelineLayout) Validate() error {
	for _, s := range l.Sets {
		for _, b := range s.Bindings {
			for i := range b.Conversions {
				if err := b.Conversions[i].Validate(); err != nil {
					return fmt.Errorf("set %d binding %d element %d: %w", s.Set, b.Binding, i, err)
				}
			}
		}
	}
	return nil
}

// Validate checks that c names known enumerants.
func (c *Conversion) Validate() error {
	if _, ok := format.Describe(c.Format); !ok {
		return fmt.Errorf("unknown format %d", c.Format)
	}
	if c.Model > ModelYCbCr2020 {
		return fmt.Errorf("unknown color model %d", c.Model)
	}
	if c.Range > RangeNarrow {
		return fmt.Errorf("unknown range %d", c.Range)
	}
	for axis, loc := range c.ChromaOffsets {
		if loc > ChromaMidpoint {
			return fmt.Errorf("unknown chroma location %d on axis %d", loc, axis)
		}
	}
	for i, sw := range c.Components {
		if sw > SwizzleA {
			return fmt.Errorf("unknown swizzle %d for component %d", sw, i)
		}
	}
	return nil
}
