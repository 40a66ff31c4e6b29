package ycbcr

import (
	"runtime"
	"testing"

	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/format"
)

// arrayProgram samples four elements of a bound texture array, so every
// conversion in the layout is exercised.
const arrayProgram = `
var @frames set=0 binding=0 array=4 dim=2d
func @main {
block0:
  %uv = load_input vec2<f32> location=0
  %root = deref_var @frames
  %i0 = const i32 0
  %i1 = const i32 1
  %i2 = const i32 2
  %i3 = const i32 3
  %e0 = deref_array %root %i0
  %e1 = deref_array %root %i1
  %e2 = deref_array %root %i2
  %e3 = deref_array %root %i3
  %s0 = tex sample vec4<f32> dim=2d coord=%uv texture=%e0 sampler=%e0
  %s1 = tex sample vec4<f32> dim=2d coord=%uv texture=%e1 sampler=%e1
  %s2 = tex sample vec4<f32> dim=2d coord=%uv texture=%e2 sampler=%e2
  %s3 = tex sample vec4<f32> dim=2d coord=%uv texture=%e3 sampler=%e3
  store_output location=0 %s0
  store_output location=1 %s1
  store_output location=2 %s2
  store_output location=3 %s3
}
`

var programsByComplexity = []struct {
	name   string
	source string
	layout conversion.Layout
}{
	{"yuyv", sampleProgram, bindOne(conversion.Conversion{Format: format.YUYV})},
	{"nv12", sampleProgram, bindOne(conversion.Conversion{Format: format.NV12, Model: conversion.ModelYCbCr709, Range: conversion.RangeNarrow})},
	{"i420", sampleProgram, bindOne(conversion.Conversion{Format: format.I420, Model: conversion.ModelYCbCr601})},
	{"array", arrayProgram, bindArray()},
}

func bindOne(c conversion.Conversion) *conversion.PipelineLayout {
	var l conversion.PipelineLayout
	l.Bind(0, 1, c)
	return &l
}

func bindArray() *conversion.PipelineLayout {
	var l conversion.PipelineLayout
	l.Bind(0, 0,
		conversion.Conversion{Format: format.NV12, Model: conversion.ModelYCbCr709},
		conversion.Conversion{Format: format.P010, Model: conversion.ModelYCbCr2020, Range: conversion.RangeNarrow},
		conversion.Conversion{Format: format.I444, Model: conversion.ModelYCbCrIdentity},
		conversion.Conversion{Format: format.UYVY, Model: conversion.ModelYCbCr601},
	)
	return &l
}

// BenchmarkParse measures text to IR parsing.
func BenchmarkParse(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(pc.source)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				m, err := Parse(pc.source)
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}
				runtime.KeepAlive(m)
			}
		})
	}
}

// BenchmarkLower measures the lowering pass alone. Parsing is excluded
// from the timing.
func BenchmarkLower(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				m, err := Parse(pc.source)
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}
				b.StartTimer()

				changed, err := Lower(m, pc.layout)
				if err != nil || !changed {
					b.Fatalf("lower = %v, %v", changed, err)
				}
			}
		})
	}
}

// BenchmarkTransform measures the full pipeline with validation.
func BenchmarkTransform(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(pc.source)))
			b.ResetTimer()

			var out string
			for i := 0; i < b.N; i++ {
				var err error
				out, err = Transform(pc.source, pc.layout)
				if err != nil {
					b.Fatalf("transform failed: %v", err)
				}
			}
			runtime.KeepAlive(out)
		})
	}
}

func TestBenchmarkProgramsLower(t *testing.T) {
	for _, pc := range programsByComplexity {
		m, err := Parse(pc.source)
		if err != nil {
			t.Fatalf("%s: %v", pc.name, err)
		}
		changed, err := Lower(m, pc.layout)
		if err != nil || !changed {
			t.Errorf("%s: lower = %v, %v", pc.name, changed, err)
		}
	}
}
