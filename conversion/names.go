package conversion

import (
	"fmt"
	"strings"
)

var modelNames = []string{
	ModelRGBIdentity:   "rgb_identity",
	ModelYCbCrIdentity: "ycbcr_identity",
	ModelYCbCr709:      "ycbcr_709",
	ModelYCbCr601:      "ycbcr_601",
	ModelYCbCr2020:     "ycbcr_2020",
}

var rangeNames = []string{
	RangeFull:   "full",
	RangeNarrow: "narrow",
}

var chromaNames = []string{
	ChromaCositedEven: "cosited_even",
	ChromaMidpoint:    "midpoint",
}

var swizzleNames = []string{
	SwizzleIdentity: "identity",
	SwizzleZero:     "zero",
	SwizzleOne:      "one",
	SwizzleR:        "r",
	SwizzleG:        "g",
	SwizzleB:        "b",
	SwizzleA:        "a",
}

func enumString(names []string, v uint8, kind string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func enumParse(names []string, text []byte, kind string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if s == n {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, string(text))
}

func enumMarshal(names []string, v uint8, kind string) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, fmt.Errorf("unknown %s %d", kind, v)
	}
	return []byte(names[v]), nil
}

func (m ColorModel) String() string { return enumString(modelNames, uint8(m), "ColorModel") }

// MarshalText implements encoding.TextMarshaler.
func (m ColorModel) MarshalText() ([]byte, error) {
	return enumMarshal(modelNames, uint8(m), "color model")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ColorModel) UnmarshalText(text []byte) error {
	v, err := enumParse(modelNames, text, "color model")
	*m = ColorModel(v)
	return err
}

func (r Range) String() string { return enumString(rangeNames, uint8(r), "Range") }

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) {
	return enumMarshal(rangeNames, uint8(r), "range")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(text []byte) error {
	v, err := enumParse(rangeNames, text, "range")
	*r = Range(v)
	return err
}

func (c ChromaLocation) String() string { return enumString(chromaNames, uint8(c), "ChromaLocation") }

// MarshalText implements encoding.TextMarshaler.
func (c ChromaLocation) MarshalText() ([]byte, error) {
	return enumMarshal(chromaNames, uint8(c), "chroma location")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChromaLocation) UnmarshalText(text []byte) error {
	v, err := enumParse(chromaNames, text, "chroma location")
	*c = ChromaLocation(v)
	return err
}

func (s ComponentSwizzle) String() string { return enumString(swizzleNames, uint8(s), "Swizzle") }

// MarshalText implements encoding.TextMarshaler.
func (s ComponentSwizzle) MarshalText() ([]byte, error) {
	return enumMarshal(swizzleNames, uint8(s), "swizzle")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ComponentSwizzle) UnmarshalText(text []byte) error {
	v, err := enumParse(swizzleNames, text, "swizzle")
	*s = ComponentSwizzle(v)
	return err
}
