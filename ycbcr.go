// Package ycbcr lowers texture samples of multi-planar YCbCr images in an
// SSA shader IR into per-plane samples with inline color conversion.
//
// Shaders are read and written in a textual IR form, lowered against a
// pipeline layout that attaches sampler YCbCr conversions to descriptor
// bindings, and optionally validated before and after the rewrite.
//
// Example usage:
//
//	layout, err := conversion.LoadLayout("layout.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := ycbcr.Transform(source, layout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control, use the asm and lower packages directly:
//
//	module, _ := asm.Parse(source)
//	changed, err := lower.YCbCrTextures(module, layout)
package ycbcr

import (
	"fmt"

	"github.com/gogpu/ycbcr/asm"
	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/ir"
	"github.com/gogpu/ycbcr/lower"
)

// Options configures Transform.
type Options struct {
	// Lower configures the lowering pass.
	Lower lower.Options

	// Validate enables IR validation before and after lowering.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Lower:    lower.DefaultOptions(),
		Validate: true,
	}
}

// Transform parses source, lowers it against layout and prints the result
// using default options.
func Transform(source string, layout conversion.Layout) (string, error) {
	return TransformWithOptions(source, layout, DefaultOptions())
}

// TransformWithOptions runs the full pipeline:
//  1. Parse the textual IR
//  2. Validate (if enabled)
//  3. Lower YCbCr texture samples
//  4. Validate the rewritten module (if enabled)
//  5. Print the textual IR
func TransformWithOptions(source string, layout conversion.Layout, opts Options) (string, error) {
	module, err := Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	if opts.Validate {
		if err := validate(module); err != nil {
			return "", fmt.Errorf("input %w", err)
		}
	}

	if _, err := LowerWithOptions(module, layout, opts.Lower); err != nil {
		return "", err
	}

	if opts.Validate {
		if err := validate(module); err != nil {
			return "", fmt.Errorf("output %w", err)
		}
	}

	return Print(module), nil
}

func validate(module *ir.Module) error {
	errs, err := Validate(module)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errs[0])
	}
	return nil
}

// Parse reads a module from its textual form.
func Parse(source string) (*ir.Module, error) {
	return asm.Parse(source)
}

// Print returns the textual form of module.
func Print(module *ir.Module) string {
	return asm.Print(module)
}

// Lower rewrites YCbCr texture samples in module with default options.
// It reports whether anything was rewritten.
func Lower(module *ir.Module, layout conversion.Layout) (bool, error) {
	return lower.YCbCrTextures(module, layout)
}

// LowerWithOptions rewrites YCbCr texture samples in module.
func LowerWithOptions(module *ir.Module, layout conversion.Layout, opts lower.Options) (bool, error) {
	return lower.YCbCrTexturesWithOptions(module, layout, opts)
}

// Validate validates an IR module for correctness.
//
// Validation checks include:
//   - Handle validity (operands, blocks and variables exist)
//   - SSA dominance (every definition dominates its uses)
//   - Instruction shapes (operand counts, component counts)
//   - Use-list consistency
//
// Returns a slice of validation errors. If the slice is empty, validation passed.
func Validate(module *ir.Module) ([]ir.ValidationError, error) {
	return ir.Validate(module)
}
