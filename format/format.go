// Package format describes the multi-planar color image formats that
// sampler YCbCr conversions refer to.
//
// Each format lists its planes with their channel count and bit depth,
// and the chroma subsampling divisors relative to the luma plane.
package format

import (
	"fmt"
	"strings"
)

// Format identifies an image format. Undefined means no format.
type Format uint16

const (
	Undefined Format = iota

	// RGBA8Unorm is a single-plane RGB image sampled through a conversion
	// (typically an external image).
	RGBA8Unorm

	// Packed 8-bit 4:2:2, one plane.
	YUYV // G8B8G8R8_422_UNORM
	UYVY // B8G8R8G8_422_UNORM

	// 8-bit luma plane plus interleaved chroma plane.
	NV12 // 4:2:0
	NV16 // 4:2:2

	// 8-bit separate Y, Cb and Cr planes.
	I420
	I422
	I444

	// High bit depth, MSB-aligned in 16-bit containers.
	P010  // 10-bit 2-plane 4:2:0
	P210  // 10-bit 2-plane 4:2:2
	I010  // 10-bit 3-plane 4:2:0
	P012  // 12-bit 2-plane 4:2:0
	I012  // 12-bit 3-plane 4:2:0
	P016  // 16-bit 2-plane 4:2:0
	I016  // 16-bit 3-plane 4:2:0
	I416  // 16-bit 3-plane 4:4:4
	count // number of formats
)

// Plane describes one physical image of a format.
type Plane struct {
	Channels uint8
	Bits     uint8

	// Subsampling of this plane relative to plane 0.
	WidthDivisor  uint8
	HeightDivisor uint8
}

// Description is the layout of a format.
type Description struct {
	Name   string // short name
	Vulkan string // canonical Vulkan enumerant name without prefix
	Planes []Plane

	// Chroma subsampling divisors of the format.
	WidthDivisor  uint32
	HeightDivisor uint32
}

func planes1(ch, bits uint8) []Plane {
	return []Plane{{Channels: ch, Bits: bits, WidthDivisor: 1, HeightDivisor: 1}}
}

func planes2(bits, wdiv, hdiv uint8) []Plane {
	return []Plane{
		{Channels: 1, Bits: bits, WidthDivisor: 1, HeightDivisor: 1},
		{Channels: 2, Bits: bits, WidthDivisor: wdiv, HeightDivisor: hdiv},
	}
}

func planes3(bits, wdiv, hdiv uint8) []Plane {
	return []Plane{
		{Channels: 1, Bits: bits, WidthDivisor: 1, HeightDivisor: 1},
		{Channels: 1, Bits: bits, WidthDivisor: wdiv, HeightDivisor: hdiv},
		{Channels: 1, Bits: bits, WidthDivisor: wdiv, HeightDivisor: hdiv},
	}
}

var descriptions = [count]Description{
	Undefined:  {Name: "UNDEFINED", Vulkan: "UNDEFINED"},
	RGBA8Unorm: {Name: "RGBA8", Vulkan: "R8G8B8A8_UNORM", Planes: planes1(4, 8), WidthDivisor: 1, HeightDivisor: 1},
	YUYV:       {Name: "YUYV", Vulkan: "G8B8G8R8_422_UNORM", Planes: planes1(4, 8), WidthDivisor: 2, HeightDivisor: 1},
	UYVY:       {Name: "UYVY", Vulkan: "B8G8R8G8_422_UNORM", Planes: planes1(4, 8), WidthDivisor: 2, HeightDivisor: 1},
	NV12:       {Name: "NV12", Vulkan: "G8_B8R8_2PLANE_420_UNORM", Planes: planes2(8, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	NV16:       {Name: "NV16", Vulkan: "G8_B8R8_2PLANE_422_UNORM", Planes: planes2(8, 2, 1), WidthDivisor: 2, HeightDivisor: 1},
	I420:       {Name: "I420", Vulkan: "G8_B8_R8_3PLANE_420_UNORM", Planes: planes3(8, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	I422:       {Name: "I422", Vulkan: "G8_B8_R8_3PLANE_422_UNORM", Planes: planes3(8, 2, 1), WidthDivisor: 2, HeightDivisor: 1},
	I444:       {Name: "I444", Vulkan: "G8_B8_R8_3PLANE_444_UNORM", Planes: planes3(8, 1, 1), WidthDivisor: 1, HeightDivisor: 1},
	P010:       {Name: "P010", Vulkan: "G10X6_B10X6R10X6_2PLANE_420_UNORM_3PACK16", Planes: planes2(10, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	P210:       {Name: "P210", Vulkan: "G10X6_B10X6R10X6_2PLANE_422_UNORM_3PACK16", Planes: planes2(10, 2, 1), WidthDivisor: 2, HeightDivisor: 1},
	I010:       {Name: "I010", Vulkan: "G10X6_B10X6_R10X6_3PLANE_420_UNORM_3PACK16", Planes: planes3(10, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	P012:       {Name: "P012", Vulkan: "G12X4_B12X4R12X4_2PLANE_420_UNORM_3PACK16", Planes: planes2(12, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	I012:       {Name: "I012", Vulkan: "G12X4_B12X4_R12X4_3PLANE_420_UNORM_3PACK16", Planes: planes3(12, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	P016:       {Name: "P016", Vulkan: "G16_B16R16_2PLANE_420_UNORM", Planes: planes2(16, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	I016:       {Name: "I016", Vulkan: "G16_B16_R16_3PLANE_420_UNORM", Planes: planes3(16, 2, 2), WidthDivisor: 2, HeightDivisor: 2},
	I416:       {Name: "I416", Vulkan: "G16_B16_R16_3PLANE_444_UNORM", Planes: planes3(16, 1, 1), WidthDivisor: 1, HeightDivisor: 1},
}

// Describe returns the layout of f. It reports false for unknown formats.
func Describe(f Format) (Description, bool) {
	if f >= count {
		return Description{}, false
	}
	return descriptions[f], true
}

// PlaneCount returns the number of planes of f, 0 for Undefined or
// unknown formats.
func (f Format) PlaneCount() int {
	d, ok := Describe(f)
	if !ok {
		return 0
	}
	return len(d.Planes)
}

// Divisors returns the horizontal and vertical chroma subsampling
// divisors of f.
func (f Format) Divisors() [2]uint32 {
	d, ok := Describe(f)
	if !ok || f == Undefined {
		return [2]uint32{1, 1}
	}
	return [2]uint32{d.WidthDivisor, d.HeightDivisor}
}

// PlaneBits returns the bit depth of the first channel of plane p.
func (f Format) PlaneBits(p int) (uint8, bool) {
	d, ok := Describe(f)
	if !ok || p < 0 || p >= len(d.Planes) {
		return 0, false
	}
	return d.Planes[p].Bits, true
}

// String returns the short name of f.
func (f Format) String() string {
	if d, ok := Describe(f); ok {
		return d.Name
	}
	return fmt.Sprintf("Format(%d)", uint16(f))
}

// Parse looks up a format by its short name or Vulkan name, ignoring case
// and an optional VK_FORMAT_ prefix.
func Parse(name string) (Format, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "VK_FORMAT_")
	for f := Undefined; f < count; f++ {
		d := descriptions[f]
		if key == d.Name || key == d.Vulkan {
			return f, nil
		}
	}
	return Undefined, fmt.Errorf("unknown format %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if f >= count {
		return nil, fmt.Errorf("unknown format %d", uint16(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
