package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ycbcr/ir"
)

// canonical is already in printed form, so it must survive a round trip
// byte for byte.
const canonical = `var @tex set=0 binding=1 array=4 dim=2d
var @depth set=1 binding=0 dim=2d arrayed shadow

func @main {
block0: -> block1, block2
  %0 = load_input vec2<f32> location=0
  %1 = const i32 -3
  %2 = deref_var @tex
  %3 = deref_array %2 %1
block1: -> block2
  %4 = const f32 0.25
  %5 = tex sample_lod vec4<f32> dim=2d coord=%0 texture=%3 sampler=%3 lod=%4
  %6 = swizzle vec2<f32> %5 zx
  store_output location=0 %5
block2:
  %7 = deref_var @depth
  %8 = tex size vec3<i32> dim=2d arrayed shadow texture=%7
  %9 = i2f32 vec3<f32> %8
  %10 = const vec4<f32> 1, 0.5, -2, 0
  %11 = fdot4 f32 %10 %10
  store_output location=1 %11
}

func @helper {
block0:
  %0 = const u32 7
}
`

func TestRoundTrip(t *testing.T) {
	m, err := Parse(canonical)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := Print(m); got != canonical {
		t.Errorf("round trip changed the text:\n%s", got)
	}
}

func TestParseStructure(t *testing.T) {
	m, err := Parse(canonical)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Variables) != 2 || len(m.Functions) != 2 {
		t.Fatalf("got %d variables and %d functions", len(m.Variables), len(m.Functions))
	}
	tex := m.Variables[0]
	if tex.Name != "tex" || tex.Set != 0 || tex.Binding != 1 || tex.ArraySize != 4 ||
		tex.Dim != gputypes.TextureViewDimension2D {
		t.Errorf("unexpected @tex: %+v", tex)
	}
	if depth := m.Variables[1]; !depth.Arrayed || !depth.Shadow {
		t.Errorf("@depth flags lost: %+v", depth)
	}

	fn := m.Functions[0]
	if len(fn.Blocks) != 3 {
		t.Fatalf("got %d blocks", len(fn.Blocks))
	}
	if s := fn.Blocks[0].Succs; len(s) != 2 || s[0] != 1 || s[1] != 2 {
		t.Errorf("block0 successors = %v", s)
	}

	var sample *ir.Tex
	for _, h := range fn.Instructions() {
		if k, ok := fn.Instr(h).Kind.(*ir.Tex); ok && k.Op == ir.TexSampleLod {
			sample = k
		}
	}
	if sample == nil {
		t.Fatal("sample_lod not parsed")
	}
	lod, ok := sample.Src(ir.SrcLod)
	if !ok {
		t.Fatal("lod source missing")
	}
	c, ok := fn.Def(lod).Kind.(*ir.Const)
	if !ok || math32.Float32frombits(uint32(c.Bits[0])) != 0.25 {
		t.Errorf("lod source is %+v", fn.Def(lod).Kind)
	}

	errs, err := ir.Validate(m)
	if err != nil || len(errs) != 0 {
		t.Errorf("parsed module does not validate: %v %v", err, errs)
	}
}

func TestPrintRenumbers(t *testing.T) {
	src := `var @t set=2 binding=3
func @f {
entry: -> exit
  %coord = load_input vec2<f32> location=1
  %t = deref_var @t
exit:
  %s = tex fetch vec4<f32> coord=%coord texture=%t
  store_output location=0 %s
}`
	want := `var @t set=2 binding=3

func @f {
block0: -> block1
  %0 = load_input vec2<f32> location=1
  %1 = deref_var @t
block1:
  %2 = tex fetch vec4<f32> coord=%0 texture=%1
  store_output location=0 %2
}
`
	m, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if got := Print(m); got != want {
		t.Errorf("Print =\n%s\nwant\n%s", got, want)
	}
}

func TestPrintAfterRemoval(t *testing.T) {
	m, err := Parse(`func @f {
block0:
  %a = const f32 1
  %b = fneg f32 %a
  %c = fneg f32 %a
  store_output location=0 %c
}`)
	if err != nil {
		t.Fatal(err)
	}
	fn := m.Functions[0]
	dead := fn.Blocks[0].Instrs[1]
	if err := fn.Remove(dead); err != nil {
		t.Fatal(err)
	}

	want := `func @f {
block0:
  %0 = const f32 1
  %1 = fneg f32 %0
  store_output location=0 %1
}
`
	if got := Print(m); got != want {
		t.Errorf("Print =\n%s\nwant\n%s", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
		column int
		want   string
	}{
		{"undefined value", "func @f {\nblock0:\n  %0 = fadd f32 %0 %1\n}\n", 3, 17, "undefined value %0"},
		{"unknown opcode", "func @f {\nblock0:\n  %0 = fsqrt f32\n}\n", 3, 8, `unknown opcode "fsqrt"`},
		{"unknown block", "func @f {\nblock0: -> nowhere\n}\n", 2, 12, "unknown block nowhere"},
		{"unterminated function", "func @f {\nblock0:\n", 3, 1, "unterminated function @f"},
		{"instruction outside block", "func @f {\n  %0 = const f32 1\n}\n", 2, 3, "outside of a block"},
		{"store with result", "func @f {\nb:\n  %0 = store_output location=0 %0\n}\n", 3, 3, "does not produce a value"},
		{"unknown variable", "func @f {\nb:\n  %0 = deref_var @missing\n}\n", 3, 18, "unknown variable @missing"},
		{"bad type", "func @f {\nb:\n  %0 = const vec5<f32> 1\n}\n", 3, 14, `unknown type "vec5"`},
		{"duplicate source", "var @t set=0 binding=0\nfunc @f {\nb:\n  %0 = deref_var @t\n  %1 = tex size i32 texture=%0 texture=%0\n}\n", 5, 32, "duplicate texture source"},
		{"redeclared variable", "var @t set=0 binding=0\nvar @t set=0 binding=1\n", 2, 5, "variable @t redeclared"},
		{"top level garbage", "block0:\n", 1, 1, "expected 'var' or 'func'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			var se *SourceError
			if !errors.As(err, &se) {
				t.Fatalf("error is %T, want *SourceError", err)
			}
			if se.Line != tt.line || se.Column != tt.column {
				t.Errorf("error at %d:%d, want %d:%d (%v)", se.Line, se.Column, tt.line, tt.column, err)
			}
			if !strings.Contains(se.Message, tt.want) {
				t.Errorf("message %q does not contain %q", se.Message, tt.want)
			}
		})
	}
}

func TestSourceErrorContext(t *testing.T) {
	source := "func @f {\nblock0:\n  %0 = fadd f32 %0 %1\n}\n"
	_, err := Parse(source)
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("error is %T, want *SourceError", err)
	}

	if got := se.Error(); got != "3:17: undefined value %0" {
		t.Errorf("Error() = %q", got)
	}
	ctx := se.FormatWithContext()
	for _, want := range []string{
		"error: undefined value %0",
		"--> line 3:17",
		"  3|   %0 = fadd f32 %0 %1",
		"   | " + strings.Repeat(" ", 16) + "^~\n",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}

	// The underline stops at the end of the line.
	long := &SourceError{Message: "m", Line: 1, Column: 3, Length: 10, Source: "abcd"}
	if got := long.FormatWithContext(); !strings.Contains(got, "   |   ^~\n") {
		t.Errorf("clipped span:\n%s", got)
	}

	bare := &SourceError{Message: "no position"}
	if bare.Error() != "no position" || bare.FormatWithContext() != "no position" {
		t.Errorf("positionless error formatted as %q / %q", bare.Error(), bare.FormatWithContext())
	}
}
