package conversion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ycbcr/format"
)

func nv12Narrow709() Conversion {
	return Conversion{
		Format: format.NV12,
		Model:  ModelYCbCr709,
		Range:  RangeNarrow,
	}
}

func TestEnabled(t *testing.T) {
	var c Conversion
	assert.False(t, c.Enabled())
	c = nv12Narrow709()
	assert.True(t, c.Enabled())
}

func TestPipelineLayoutLookup(t *testing.T) {
	var l PipelineLayout
	l.Bind(0, 1, nv12Narrow709(), Conversion{})
	l.Bind(1, 0, Conversion{Format: format.I420, Model: ModelYCbCr601})

	got := l.Lookup(0, 1)
	require.Len(t, got, 2)
	assert.Equal(t, format.NV12, got[0].Format)
	assert.False(t, got[1].Enabled())

	assert.Len(t, l.Lookup(1, 0), 1)
	assert.Nil(t, l.Lookup(0, 0))
	assert.Nil(t, l.Lookup(2, 1))

	l.Bind(0, 1, Conversion{Format: format.P010})
	got = l.Lookup(0, 1)
	require.Len(t, got, 1)
	assert.Equal(t, format.P010, got[0].Format)

	var nilLayout *PipelineLayout
	assert.Nil(t, nilLayout.Lookup(0, 0))
}

func TestLayoutFunc(t *testing.T) {
	calls := 0
	l := LayoutFunc(func(set, binding uint32) []Conversion {
		calls++
		if set == 3 && binding == 4 {
			return []Conversion{nv12Narrow709()}
		}
		return nil
	})
	assert.Len(t, l.Lookup(3, 4), 1)
	assert.Nil(t, l.Lookup(0, 0))
	assert.Equal(t, 2, calls)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		conv    Conversion
		wantErr string
	}{
		{"valid", nv12Narrow709(), ""},
		{"disabled", Conversion{}, ""},
		{"format", Conversion{Format: format.Format(999)}, "unknown format"},
		{"model", Conversion{Format: format.NV12, Model: 9}, "unknown color model"},
		{"range", Conversion{Format: format.NV12, Range: 5}, "unknown range"},
		{"chroma", Conversion{Format: format.NV12, ChromaOffsets: [2]ChromaLocation{0, 7}}, "axis 1"},
		{"swizzle", Conversion{Format: format.NV12, Components: [4]ComponentSwizzle{0, 0, 42, 0}}, "component 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnumText(t *testing.T) {
	var m ColorModel
	require.NoError(t, m.UnmarshalText([]byte("YCbCr_601")))
	assert.Equal(t, ModelYCbCr601, m)
	assert.Equal(t, "ycbcr_601", m.String())

	var r Range
	require.NoError(t, r.UnmarshalText([]byte("narrow")))
	assert.Equal(t, RangeNarrow, r)

	var c ChromaLocation
	require.NoError(t, c.UnmarshalText([]byte("midpoint")))
	assert.Equal(t, ChromaMidpoint, c)

	var s ComponentSwizzle
	require.NoError(t, s.UnmarshalText([]byte("b")))
	assert.Equal(t, SwizzleB, s)

	assert.Error(t, s.UnmarshalText([]byte("w")))
	_, err := ColorModel(17).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Swizzle(9)", ComponentSwizzle(9).String())
}

const yamlLayout = `
sets:
  - set: 0
    bindings:
      - binding: 1
        conversions:
          - format: NV12
            model: ycbcr_709
            range: narrow
            chroma_offsets: [cosited_even, midpoint]
            components: [identity, identity, identity, one]
          - format: UNDEFINED
`

const tomlLayout = `
[[sets]]
set = 0

[[sets.bindings]]
binding = 1

[[sets.bindings.conversions]]
format = "G8_B8R8_2PLANE_420_UNORM"
model = "ycbcr_709"
range = "narrow"
chroma_offsets = ["cosited_even", "midpoint"]
components = ["identity", "identity", "identity", "one"]

[[sets.bindings.conversions]]
format = "undefined"
`

func checkParsedLayout(t *testing.T, l *PipelineLayout) {
	t.Helper()
	convs := l.Lookup(0, 1)
	require.Len(t, convs, 2)

	want := Conversion{
		Format:        format.NV12,
		Model:         ModelYCbCr709,
		Range:         RangeNarrow,
		ChromaOffsets: [2]ChromaLocation{ChromaCositedEven, ChromaMidpoint},
		Components:    [4]ComponentSwizzle{SwizzleIdentity, SwizzleIdentity, SwizzleIdentity, SwizzleOne},
	}
	assert.Equal(t, want, convs[0])
	assert.False(t, convs[1].Enabled())
}

func TestParseLayout(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		l, err := ParseLayout([]byte(yamlLayout), KindYAML)
		require.NoError(t, err)
		checkParsedLayout(t, l)
	})
	t.Run("toml", func(t *testing.T) {
		l, err := ParseLayout([]byte(tomlLayout), KindTOML)
		require.NoError(t, err)
		checkParsedLayout(t, l)
	})
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind FileKind
	}{
		{"yaml unknown field", "sets:\n  - set: 0\n    colour: red\n", KindYAML},
		{"yaml bad model", "sets:\n  - bindings:\n      - conversions:\n          - format: NV12\n            model: sepia\n", KindYAML},
		{"yaml bad format", "sets:\n  - bindings:\n      - conversions:\n          - format: NV21\n", KindYAML},
		{"toml unknown field", "[[sets]]\nset = 0\ncolour = \"red\"\n", KindTOML},
		{"toml bad range", "[[sets]]\n[[sets.bindings]]\n[[sets.bindings.conversions]]\nformat = \"NV12\"\nrange = \"studio\"\n", KindTOML},
		{"unknown kind", "", FileKind(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.data), tt.kind)
			assert.Error(t, err)
		})
	}
}

func TestMarshalLayoutRoundTrip(t *testing.T) {
	var l PipelineLayout
	l.Bind(2, 3, nv12Narrow709(), Conversion{
		Format:     format.I420,
		Model:      ModelYCbCr2020,
		Components: [4]ComponentSwizzle{SwizzleB, SwizzleG, SwizzleR, SwizzleOne},
	})

	for _, kind := range []FileKind{KindYAML, KindTOML} {
		data, err := MarshalLayout(&l, kind)
		require.NoError(t, err)
		back, err := ParseLayout(data, kind)
		require.NoError(t, err, string(data))
		assert.Equal(t, l.Lookup(2, 3), back.Lookup(2, 3))
	}
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "layout.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlLayout), 0o644))
	l, err := LoadLayout(yamlPath)
	require.NoError(t, err)
	checkParsedLayout(t, l)

	tomlPath := filepath.Join(dir, "layout.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlLayout), 0o644))
	l, err = LoadLayout(tomlPath)
	require.NoError(t, err)
	checkParsedLayout(t, l)

	_, err = LoadLayout(filepath.Join(dir, "layout.json"))
	assert.Error(t, err)
	_, err = LoadLayout(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
