package lower

import (
	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/ir"
)

// channelRoute locates each logical channel (Cr, Y, Cb, A) in the per-plane
// sample results.
type channelRoute struct {
	plane     [4]uint8
	component [4]uint8
}

// routes is indexed by plane count.
var routes = [4]channelRoute{
	1: {plane: [4]uint8{0, 0, 0, 0}, component: [4]uint8{0, 1, 2, 3}},
	2: {plane: [4]uint8{1, 0, 1, 0}, component: [4]uint8{1, 0, 0, 3}},
	3: {plane: [4]uint8{2, 0, 1, 0}, component: [4]uint8{0, 0, 0, 3}},
}

// channelSource is the resolved source of one output channel.
type channelSource struct {
	constant bool
	value    float32 // when constant
	channel  uint8   // routed channel otherwise
}

// composeSwizzles applies a component mapping on top of the identity
// channel order.
func composeSwizzles(mapping [4]conversion.ComponentSwizzle) [4]channelSource {
	var out [4]channelSource
	for i, sw := range mapping {
		switch sw {
		case conversion.SwizzleIdentity:
			out[i] = channelSource{channel: uint8(i)}
		case conversion.SwizzleZero:
			out[i] = channelSource{constant: true, value: 0}
		case conversion.SwizzleOne:
			out[i] = channelSource{constant: true, value: 1}
		default:
			out[i] = channelSource{channel: uint8(sw - conversion.SwizzleR)}
		}
	}
	return out
}

// routeChannel returns the plane and component that hold logical channel ch
// for a format with planeCount planes.
func routeChannel(planeCount int, ch uint8) (plane, component uint8) {
	r := &routes[planeCount]
	return r.plane[ch], r.component[ch]
}

// combine assembles the swizzled 4-component vector from the per-plane
// sample results.
func (s *site) combine(planes []ir.Value) ir.Value {
	b := s.b
	var zero, one ir.Value

	var vals [4]ir.Value
	for i, src := range composeSwizzles(s.conv.Components) {
		switch {
		case src.constant && src.value == 0:
			if !zero.Valid() {
				zero = b.ImmFloat(0)
			}
			vals[i] = zero
		case src.constant:
			if !one.Valid() {
				one = b.ImmFloat(1)
			}
			vals[i] = one
		default:
			plane, comp := routeChannel(len(planes), src.channel)
			vals[i] = b.Channel(planes[plane], comp)
		}
	}
	return b.Vec(vals[:]...)
}
