package tx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// ErrInvalidTypeTag is returned when a Move type string cannot be parsed.
var ErrInvalidTypeTag = errors.New("invalid type tag")

// TypeTagKind is the variant of a TypeTag. Values match the BCS variant index.
type TypeTagKind uint32

const (
	TypeBool TypeTagKind = iota
	TypeU8
	TypeU64
	TypeU128
	TypeAddress
	TypeSigner
	TypeVector
	TypeStruct
	TypeU16
	TypeU32
	TypeU256
)

var primitiveNames = map[TypeTagKind]string{
	TypeBool:    "bool",
	TypeU8:      "u8",
	TypeU16:     "u16",
	TypeU32:     "u32",
	TypeU64:     "u64",
	TypeU128:    "u128",
	TypeU256:    "u256",
	TypeAddress: "address",
	TypeSigner:  "signer",
}

// TypeTag is a Move type used as a generic argument.
type TypeTag struct {
	Kind   TypeTagKind
	Elem   *TypeTag   // TypeVector
	Struct *StructTag // TypeStruct
}

// StructTag names a Move struct type.
type StructTag struct {
	Address    types.Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// VectorOf returns vector<elem>.
func VectorOf(elem TypeTag) TypeTag {
	return TypeTag{Kind: TypeVector, Elem: &elem}
}

// StructOf wraps a struct tag.
func StructOf(st StructTag) TypeTag {
	return TypeTag{Kind: TypeStruct, Struct: &st}
}

func (t TypeTag) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(uint32(t.Kind)); err != nil {
		return err
	}
	switch t.Kind {
	case TypeVector:
		if t.Elem == nil {
			return fmt.Errorf("%w: vector without element type", ErrInvalidTypeTag)
		}
		return t.Elem.serialize(s)
	case TypeStruct:
		if t.Struct == nil {
			return fmt.Errorf("%w: struct tag missing", ErrInvalidTypeTag)
		}
		return t.Struct.serialize(s)
	}
	if _, ok := primitiveNames[t.Kind]; !ok {
		return fmt.Errorf("%w: kind %d", ErrInvalidTypeTag, t.Kind)
	}
	return nil
}

func (st StructTag) serialize(s serde.Serializer) error {
	if err := serializeAddress(s, st.Address); err != nil {
		return err
	}
	if err := s.SerializeStr(st.Module); err != nil {
		return err
	}
	if err := s.SerializeStr(st.Name); err != nil {
		return err
	}
	return serializeSeq(s, st.TypeParams)
}

// String renders the tag in Move source syntax.
func (t TypeTag) String() string {
	switch t.Kind {
	case TypeVector:
		if t.Elem == nil {
			return "vector<?>"
		}
		return "vector<" + t.Elem.String() + ">"
	case TypeStruct:
		if t.Struct == nil {
			return "?"
		}
		return t.Struct.String()
	}
	return primitiveNames[t.Kind]
}

func (st StructTag) String() string {
	var b strings.Builder
	b.WriteString(shortAddress(st.Address))
	b.WriteString("::")
	b.WriteString(st.Module)
	b.WriteString("::")
	b.WriteString(st.Name)
	if len(st.TypeParams) > 0 {
		b.WriteByte('<')
		for i, p := range st.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// shortAddress drops leading zero nibbles so framework addresses read as 0x2.
func shortAddress(a types.Address) string {
	s := strings.TrimLeft(a.String()[2:], "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

// ParseTypeTag parses a Move type such as "u64", "vector<u8>" or
// "0x2::coin::Coin<0x2::iota::IOTA>".
func ParseTypeTag(s string) (TypeTag, error) {
	p := &tagParser{src: s}
	t, err := p.typeTag()
	if err != nil {
		return TypeTag{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeTag{}, fmt.Errorf("%w: trailing input in %q", ErrInvalidTypeTag, s)
	}
	return t, nil
}

// ParseStructTag parses a struct type string.
func ParseStructTag(s string) (StructTag, error) {
	t, err := ParseTypeTag(s)
	if err != nil {
		return StructTag{}, err
	}
	if t.Kind != TypeStruct {
		return StructTag{}, fmt.Errorf("%w: %q is not a struct", ErrInvalidTypeTag, s)
	}
	return *t.Struct, nil
}

type tagParser struct {
	src string
	pos int
}

func (p *tagParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *tagParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *tagParser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return fmt.Errorf("%w: expected %q at offset %d in %q", ErrInvalidTypeTag, tok, p.pos, p.src)
	}
	p.pos += len(tok)
	return nil
}

func (p *tagParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *tagParser) typeTag() (TypeTag, error) {
	word := p.ident()
	if word == "" {
		return TypeTag{}, fmt.Errorf("%w: empty type at offset %d in %q", ErrInvalidTypeTag, p.pos, p.src)
	}
	if word == "vector" {
		if err := p.expect("<"); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.typeTag()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(">"); err != nil {
			return TypeTag{}, err
		}
		return VectorOf(elem), nil
	}
	if !p.peek("::") {
		for kind, name := range primitiveNames {
			if name == word {
				return TypeTag{Kind: kind}, nil
			}
		}
		return TypeTag{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTypeTag, word)
	}

	addr, err := types.ParseAddress(word)
	if err != nil {
		return TypeTag{}, fmt.Errorf("%w: %v", ErrInvalidTypeTag, err)
	}
	st := StructTag{Address: addr}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	if st.Module = p.ident(); st.Module == "" {
		return TypeTag{}, fmt.Errorf("%w: missing module in %q", ErrInvalidTypeTag, p.src)
	}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	if st.Name = p.ident(); st.Name == "" {
		return TypeTag{}, fmt.Errorf("%w: missing struct name in %q", ErrInvalidTypeTag, p.src)
	}
	if p.peek("<") {
		p.pos++
		for {
			param, err := p.typeTag()
			if err != nil {
				return TypeTag{}, err
			}
			st.TypeParams = append(st.TypeParams, param)
			if p.peek(",") {
				p.pos++
				continue
			}
			if err := p.expect(">"); err != nil {
				return TypeTag{}, err
			}
			break
		}
	}
	return StructOf(st), nil
}
