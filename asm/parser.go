package asm

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ycbcr/ir"
)

// Parse reads a module from its textual form.
//
// Values must be defined before they are referenced in the text. Block
// labels may be referenced before they appear.
func Parse(source string) (*ir.Module, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{
		tokens: tokens,
		source: source,
		module: &ir.Module{},
		vars:   make(map[string]ir.VariableHandle),
	}
	if err := p.parseModule(); err != nil {
		return nil, err
	}
	return p.module, nil
}

// Parser builds a module from tokens.
type Parser struct {
	tokens  []Token
	current int
	source  string

	module *ir.Module
	vars   map[string]ir.VariableHandle

	// Per-function state.
	fn     *ir.Function
	block  *ir.Block
	values map[string]ir.Value
	labels map[string]ir.BlockHandle
	succs  []pendingSuccs
}

type pendingSuccs struct {
	block  *ir.Block
	labels []Token
}

func (p *Parser) parseModule() error {
	for {
		p.skipNewlines()
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF:
			return nil
		case p.checkIdent("var"):
			if err := p.parseVariable(); err != nil {
				return err
			}
		case p.checkIdent("func"):
			if err := p.parseFunction(); err != nil {
				return err
			}
		default:
			return p.errorAt(tok, "expected 'var' or 'func', got %s", describe(tok))
		}
	}
}

// var @name set=N binding=N [array=N] [dim=2d] [arrayed] [shadow]
func (p *Parser) parseVariable() error {
	p.advance()
	name, err := p.expect(TokenGlobal, "variable name")
	if err != nil {
		return err
	}
	if _, dup := p.vars[name.Name()]; dup {
		return p.errorAt(name, "variable @%s redeclared", name.Name())
	}
	v := ir.Variable{Name: name.Name()}

	for !p.atLineEnd() {
		key, err := p.expect(TokenIdent, "attribute")
		if err != nil {
			return err
		}
		switch key.Lexeme {
		case "arrayed":
			v.Arrayed = true
			continue
		case "shadow":
			v.Shadow = true
			continue
		}
		if _, err := p.expect(TokenEqual, "'='"); err != nil {
			return err
		}
		switch key.Lexeme {
		case "set":
			v.Set, err = p.parseUint()
		case "binding":
			v.Binding, err = p.parseUint()
		case "array":
			v.ArraySize, err = p.parseUint()
		case "dim":
			v.Dim, err = p.parseDim()
		default:
			return p.errorAt(key, "unknown variable attribute %q", key.Lexeme)
		}
		if err != nil {
			return err
		}
	}
	p.vars[v.Name] = p.module.AddVariable(v)
	return p.endLine()
}

func (p *Parser) parseFunction() error {
	p.advance()
	name, err := p.expect(TokenGlobal, "function name")
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenLeftBrace, "'{'"); err != nil {
		return err
	}
	if err := p.endLine(); err != nil {
		return err
	}

	p.fn = p.module.AddFunction(name.Name())
	p.block = nil
	p.values = make(map[string]ir.Value)
	p.labels = make(map[string]ir.BlockHandle)
	p.succs = nil

	for {
		p.skipNewlines()
		tok := p.peek()
		switch {
		case tok.Kind == TokenRightBrace:
			p.advance()
			if err := p.resolveSuccessors(); err != nil {
				return err
			}
			return p.endLine()
		case tok.Kind == TokenEOF:
			return p.errorAt(tok, "unterminated function @%s", name.Name())
		case tok.Kind == TokenIdent && p.peekAt(1).Kind == TokenColon:
			if err := p.parseBlockHeader(); err != nil {
				return err
			}
		default:
			if p.block == nil {
				return p.errorAt(tok, "instruction outside of a block")
			}
			if err := p.parseInstruction(); err != nil {
				return err
			}
		}
	}
}

// label: [-> label, label...]
func (p *Parser) parseBlockHeader() error {
	label := p.advance()
	p.advance() // ':'
	if _, dup := p.labels[label.Lexeme]; dup {
		return p.errorAt(label, "block %s redeclared", label.Lexeme)
	}
	p.block = p.fn.AddBlock()
	p.labels[label.Lexeme] = p.block.Handle

	if p.match(TokenArrow) {
		pending := pendingSuccs{block: p.block}
		for {
			succ, err := p.expect(TokenIdent, "block label")
			if err != nil {
				return err
			}
			pending.labels = append(pending.labels, succ)
			if !p.match(TokenComma) {
				break
			}
		}
		p.succs = append(p.succs, pending)
	}
	return p.endLine()
}

func (p *Parser) resolveSuccessors() error {
	for _, pending := range p.succs {
		for _, label := range pending.labels {
			h, ok := p.labels[label.Lexeme]
			if !ok {
				return p.errorAt(label, "unknown block %s", label.Lexeme)
			}
			pending.block.Succs = append(pending.block.Succs, h)
		}
	}
	return nil
}

func (p *Parser) parseInstruction() error {
	var result Token
	if p.peek().Kind == TokenValue {
		result = p.advance()
		if _, dup := p.values[result.Name()]; dup {
			return p.errorAt(result, "value %%%s redefined", result.Name())
		}
		if _, err := p.expect(TokenEqual, "'='"); err != nil {
			return err
		}
	}
	op, err := p.expect(TokenIdent, "opcode")
	if err != nil {
		return err
	}

	if op.Lexeme == "store_output" {
		if result.Kind == TokenValue {
			return p.errorAt(result, "store_output does not produce a value")
		}
		return p.parseStoreOutput()
	}
	if result.Kind != TokenValue {
		return p.errorAt(op, "%s must define a value", op.Lexeme)
	}

	var (
		kind ir.InstructionKind
		typ  ir.ValueType
	)
	switch op.Lexeme {
	case "const":
		kind, typ, err = p.parseConst()
	case "load_input":
		kind, typ, err = p.parseLoadInput()
	case "deref_var":
		kind, typ, err = p.parseDerefVar()
	case "deref_array":
		kind, typ, err = p.parseDerefArray()
	case "swizzle":
		kind, typ, err = p.parseSwizzle()
	case "tex":
		kind, typ, err = p.parseTex()
	default:
		aluOp, ok := aluOps[op.Lexeme]
		if !ok {
			return p.errorAt(op, "unknown opcode %q", op.Lexeme)
		}
		kind, typ, err = p.parseALU(aluOp)
	}
	if err != nil {
		return err
	}

	p.values[result.Name()] = p.fn.Append(p.block.Handle, kind, typ)
	return p.endLine()
}

// const type lit[, lit...]
func (p *Parser) parseConst() (ir.InstructionKind, ir.ValueType, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, typ, err
	}
	c := &ir.Const{}
	for i := range int(typ.Components) {
		if i > 0 {
			if _, err := p.expect(TokenComma, "','"); err != nil {
				return nil, typ, err
			}
		}
		lit := p.advance()
		if lit.Kind != TokenIntLiteral && lit.Kind != TokenFloatLiteral {
			return nil, typ, p.errorAt(lit, "expected literal, got %s", describe(lit))
		}
		bits, err := literalBits(lit.Lexeme, typ.Kind)
		if err != nil {
			return nil, typ, p.errorAt(lit, "invalid %s literal %q", scalarNames[typ.Kind], lit.Lexeme)
		}
		c.Bits[i] = bits
	}
	return c, typ, nil
}

func literalBits(lex string, kind ir.ScalarKind) (uint64, error) {
	switch kind {
	case ir.ScalarFloat:
		f, err := strconv.ParseFloat(lex, 32)
		if err != nil {
			return 0, err
		}
		return uint64(math32.Float32bits(float32(f))), nil
	case ir.ScalarSint:
		i, err := strconv.ParseInt(lex, 10, 32)
		if err != nil {
			return 0, err
		}
		return uint64(uint32(int32(i))), nil
	default:
		u, err := strconv.ParseUint(lex, 10, 32)
		return u, err
	}
}

// load_input type location=N
func (p *Parser) parseLoadInput() (ir.InstructionKind, ir.ValueType, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, typ, err
	}
	loc, err := p.parseKeyUint("location")
	if err != nil {
		return nil, typ, err
	}
	return &ir.LoadInput{Location: loc}, typ, nil
}

// store_output location=N %v
func (p *Parser) parseStoreOutput() error {
	loc, err := p.parseKeyUint("location")
	if err != nil {
		return err
	}
	src, err := p.parseOperand()
	if err != nil {
		return err
	}
	p.fn.Append(p.block.Handle, &ir.StoreOutput{Location: loc, Src: src}, ir.ValueType{})
	return p.endLine()
}

// deref_var @name
func (p *Parser) parseDerefVar() (ir.InstructionKind, ir.ValueType, error) {
	name, err := p.expect(TokenGlobal, "variable name")
	if err != nil {
		return nil, ir.RefType, err
	}
	h, ok := p.vars[name.Name()]
	if !ok {
		return nil, ir.RefType, p.errorAt(name, "unknown variable @%s", name.Name())
	}
	return &ir.Deref{Kind: ir.DerefVar, Var: h}, ir.RefType, nil
}

// deref_array %parent %index
func (p *Parser) parseDerefArray() (ir.InstructionKind, ir.ValueType, error) {
	parent, err := p.parseOperand()
	if err != nil {
		return nil, ir.RefType, err
	}
	index, err := p.parseOperand()
	if err != nil {
		return nil, ir.RefType, err
	}
	return &ir.Deref{Kind: ir.DerefArray, Parent: parent, Index: index}, ir.RefType, nil
}

// swizzle type %v xyzw
func (p *Parser) parseSwizzle() (ir.InstructionKind, ir.ValueType, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, typ, err
	}
	src, err := p.parseOperand()
	if err != nil {
		return nil, typ, err
	}
	mask, err := p.expect(TokenIdent, "swizzle mask")
	if err != nil {
		return nil, typ, err
	}
	comps := make([]uint8, 0, len(mask.Lexeme))
	for _, r := range mask.Lexeme {
		c := strings.IndexRune(swizzleLetters, r)
		if c < 0 {
			return nil, typ, p.errorAt(mask, "invalid swizzle mask %q", mask.Lexeme)
		}
		comps = append(comps, uint8(c))
	}
	return &ir.Swizzle{Src: src, Components: comps}, typ, nil
}

// op type %a [%b...]
func (p *Parser) parseALU(op ir.ALUOp) (ir.InstructionKind, ir.ValueType, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, typ, err
	}
	var args []ir.Value
	for !p.atLineEnd() {
		v, err := p.parseOperand()
		if err != nil {
			return nil, typ, err
		}
		args = append(args, v)
	}
	return &ir.ALU{Op: op, Args: args}, typ, nil
}

// tex op type [attr=val | flag | role=%v]...
func (p *Parser) parseTex() (ir.InstructionKind, ir.ValueType, error) {
	opTok, err := p.expect(TokenIdent, "texture op")
	if err != nil {
		return nil, ir.ValueType{}, err
	}
	op, ok := texOps[opTok.Lexeme]
	if !ok {
		return nil, ir.ValueType{}, p.errorAt(opTok, "unknown texture op %q", opTok.Lexeme)
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, typ, err
	}

	t := &ir.Tex{Op: op}
	for !p.atLineEnd() {
		key, err := p.expect(TokenIdent, "texture attribute")
		if err != nil {
			return nil, typ, err
		}
		switch key.Lexeme {
		case "arrayed":
			t.Arrayed = true
			continue
		case "shadow":
			t.Shadow = true
			continue
		}
		if _, err := p.expect(TokenEqual, "'='"); err != nil {
			return nil, typ, err
		}
		if role, ok := srcRoles[key.Lexeme]; ok {
			if t.Sources[role].Valid() {
				return nil, typ, p.errorAt(key, "duplicate %s source", key.Lexeme)
			}
			if t.Sources[role], err = p.parseOperand(); err != nil {
				return nil, typ, err
			}
			continue
		}

		var n uint32
		switch key.Lexeme {
		case "dim":
			t.Dim, err = p.parseDim()
		case "component":
			n, err = p.parseUint()
			t.Component = uint8(n)
		case "coord_components":
			n, err = p.parseUint()
			t.CoordComponents = uint8(n)
		case "texture_index":
			t.TextureIndex, err = p.parseUint()
		case "sampler_index":
			t.SamplerIndex, err = p.parseUint()
		default:
			return nil, typ, p.errorAt(key, "unknown texture attribute %q", key.Lexeme)
		}
		if err != nil {
			return nil, typ, err
		}
	}
	return t, typ, nil
}

// parseType reads f32, i32, u32 or vecN<scalar>.
func (p *Parser) parseType() (ir.ValueType, error) {
	tok, err := p.expect(TokenIdent, "type")
	if err != nil {
		return ir.ValueType{}, err
	}
	if kind, ok := scalars[tok.Lexeme]; ok {
		return ir.ValueType{Components: 1, BitSize: 32, Kind: kind}, nil
	}

	n := 0
	switch tok.Lexeme {
	case "vec2":
		n = 2
	case "vec3":
		n = 3
	case "vec4":
		n = 4
	default:
		return ir.ValueType{}, p.errorAt(tok, "unknown type %q", tok.Lexeme)
	}
	if _, err := p.expect(TokenLess, "'<'"); err != nil {
		return ir.ValueType{}, err
	}
	elem, err := p.expect(TokenIdent, "scalar type")
	if err != nil {
		return ir.ValueType{}, err
	}
	kind, ok := scalars[elem.Lexeme]
	if !ok {
		return ir.ValueType{}, p.errorAt(elem, "unknown scalar type %q", elem.Lexeme)
	}
	if _, err := p.expect(TokenGreater, "'>'"); err != nil {
		return ir.ValueType{}, err
	}
	return ir.ValueType{Components: uint8(n), BitSize: 32, Kind: kind}, nil
}

func (p *Parser) parseOperand() (ir.Value, error) {
	tok, err := p.expect(TokenValue, "value")
	if err != nil {
		return ir.NoValue, err
	}
	v, ok := p.values[tok.Name()]
	if !ok {
		return ir.NoValue, p.errorAt(tok, "undefined value %%%s", tok.Name())
	}
	return v, nil
}

func (p *Parser) parseDim() (gputypes.TextureViewDimension, error) {
	tok, err := p.expect(TokenIdent, "dimension")
	if err != nil {
		return 0, err
	}
	d, ok := dims[tok.Lexeme]
	if !ok {
		return 0, p.errorAt(tok, "unknown dimension %q", tok.Lexeme)
	}
	return d, nil
}

func (p *Parser) parseUint() (uint32, error) {
	tok, err := p.expect(TokenIntLiteral, "integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(tok.Lexeme, 10, 32)
	if err != nil {
		return 0, p.errorAt(tok, "invalid unsigned integer %q", tok.Lexeme)
	}
	return uint32(n), nil
}

// parseKeyUint reads key=N.
func (p *Parser) parseKeyUint(key string) (uint32, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent || tok.Lexeme != key {
		return 0, p.errorAt(tok, "expected %s=, got %s", key, describe(tok))
	}
	p.advance()
	if _, err := p.expect(TokenEqual, "'='"); err != nil {
		return 0, err
	}
	return p.parseUint()
}

// Token helpers

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) Token {
	if i := p.current + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Kind != TokenEOF {
		p.current++
	}
	return tok
}

func (p *Parser) match(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) checkIdent(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Lexeme == word
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorAt(tok, "expected %s, got %s", what, describe(tok))
	}
	return p.advance(), nil
}

func (p *Parser) atLineEnd() bool {
	k := p.peek().Kind
	return k == TokenNewline || k == TokenEOF
}

func (p *Parser) endLine() error {
	tok := p.peek()
	switch tok.Kind {
	case TokenNewline:
		p.advance()
		return nil
	case TokenEOF:
		return nil
	default:
		return p.errorAt(tok, "unexpected %s at end of line", describe(tok))
	}
}

func (p *Parser) skipNewlines() {
	for p.peek().Kind == TokenNewline {
		p.advance()
	}
}

// errorAt reports an error spanning tok.
func (p *Parser) errorAt(tok Token, format string, args ...any) error {
	err := NewSourceErrorf(tok.Line, tok.Column, p.source, format, args...)
	if tok.Kind != TokenNewline {
		err.Length = max(len(tok.Lexeme), 1)
	}
	return err
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF, TokenNewline:
		return tok.Kind.String()
	default:
		return strconv.Quote(tok.Lexeme)
	}
}
