package tdl

import (
	"strings"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

var primitiveKinds = map[string]Kind{
	"bool":   KindBool,
	"int8":   KindInt8,
	"int16":  KindInt16,
	"int32":  KindInt32,
	"int64":  KindInt64,
	"float":  KindFloat,
	"double": KindDouble,
	"bytes":  KindBytes,
}

// parser is a small hand-rolled recursive-descent parser over TDL's
// canonical string form. The grammar has exactly three productions
// (List<type> | Map<type,type> | base, where base is a primitive
// keyword or a dotted identifier), too
// small to justify pulling in a general parser-generator dependency;
// this mirrors type/tdl_parse.py's Lark grammar one level down in
// abstraction (grounded on the same production rules, re-expressed
// as a hand-written descent since Go's ecosystem favors that for
// DSLs this size — see text/template's own approach). A bare
// identifier that isn't a known primitive keyword becomes a Class
// type named after the identifier (spec.md §4.1 grammar's "base"
// production); there is no "Class<...>" wrapper syntax.
type parser struct {
	s   string
	pos int
}

// Parse parses s as a TDL canonical type string (spec.md §4.1,
// "parse_tdl_type"). It returns a type_error wrapping any syntax
// problem, mirroring tdl_parse.py's parse_tdl_type catching LarkError.
func Parse(s string) (*Type, error) {
	p := &parser{s: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, core.NewTypeError("unexpected trailing input in TDL type %q at position %d", s, p.pos)
	}
	return t, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peekIdent() string {
	start := p.pos
	for p.pos < len(p.s) && isIdentByte(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *parser) expect(b byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != b {
		return core.NewTypeError("expected %q in TDL type %q at position %d", string(b), p.s, p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseType() (*Type, error) {
	p.skipSpace()
	name := p.peekIdent()
	if name == "" {
		return nil, core.NewTypeError("expected a TDL type name in %q at position %d", p.s, p.pos)
	}

	switch name {
	case "List":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return List(elem), nil

	case "Map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Map(key, value)

	default:
		if kind, ok := primitiveKinds[name]; ok {
			return &Type{Kind: kind}, nil
		}
		// An unknown keyword is a dotted class name, not a parse
		// error (spec.md §4.1: "Unknown primitive keyword becomes
		// Class<name>").
		return Class(name), nil
	}
}

// MustParse parses s and panics on error; used for literal types
// known at compile time (e.g. in tests and registrations).
func MustParse(s string) *Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// isPrimitiveName reports whether name, with surrounding whitespace
// trimmed, is a TDL primitive keyword. Nothing in the package calls it;
// parseType looks up primitiveKinds directly.
func isPrimitiveName(name string) bool {
	_, ok := primitiveKinds[strings.TrimSpace(name)]
	return ok
}
