package kind

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse builds a Kind tree from a type string such as
// "struct<a:long,b:list<string>>" or "decimal(18,4)". It is the inverse of
// Kind.String and is mostly useful in tests and error messages.
func Parse(s string) (Kind, error) {
	p := &parser{input: s}
	k, err := p.parseKind()
	if err != nil {
		return Kind{}, err
	}
	if p.pos != len(p.input) {
		return Kind{}, p.errorf("trailing input %q", p.input[p.pos:])
	}
	return k, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("kind: parse %q at offset %d: %s", p.input, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseKind() (Kind, error) {
	word := p.takeWord()
	switch word {
	case "boolean":
		return Of(Boolean), nil
	case "byte", "tinyint":
		return Of(Byte), nil
	case "short", "smallint":
		return Of(Short), nil
	case "int":
		return Of(Int), nil
	case "long", "bigint":
		return Of(Long), nil
	case "float":
		return Of(Float), nil
	case "double":
		return Of(Double), nil
	case "string":
		return Of(String), nil
	case "binary":
		return Of(Binary), nil
	case "timestamp":
		return Of(Timestamp), nil
	case "date":
		return Of(Date), nil
	case "decimal":
		return p.parseDecimal()
	case "struct":
		return p.parseStruct()
	case "list", "array":
		if err := p.expect('<'); err != nil {
			return Kind{}, err
		}
		elem, err := p.parseKind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect('>'); err != nil {
			return Kind{}, err
		}
		return NewList(elem), nil
	case "map":
		if err := p.expect('<'); err != nil {
			return Kind{}, err
		}
		key, err := p.parseKind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect(','); err != nil {
			return Kind{}, err
		}
		value, err := p.parseKind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect('>'); err != nil {
			return Kind{}, err
		}
		return NewMap(key, value), nil
	case "union", "uniontype":
		return p.parseUnion()
	case "":
		return Kind{}, p.errorf("expected a kind name")
	default:
		return Kind{}, p.errorf("unknown kind %q", word)
	}
}

func (p *parser) parseDecimal() (Kind, error) {
	if err := p.expect('('); err != nil {
		return Kind{}, err
	}
	precision, err := p.takeInt()
	if err != nil {
		return Kind{}, err
	}
	if err := p.expect(','); err != nil {
		return Kind{}, err
	}
	scale, err := p.takeInt()
	if err != nil {
		return Kind{}, err
	}
	if err := p.expect(')'); err != nil {
		return Kind{}, err
	}
	return NewDecimal(precision, scale), nil
}

func (p *parser) parseStruct() (Kind, error) {
	if err := p.expect('<'); err != nil {
		return Kind{}, err
	}
	var fields []Field
	for !p.eat('>') {
		if len(fields) > 0 {
			if err := p.expect(','); err != nil {
				return Kind{}, err
			}
		}
		name := p.takeWord()
		if name == "" {
			return Kind{}, p.errorf("expected a field name")
		}
		if err := p.expect(':'); err != nil {
			return Kind{}, err
		}
		fk, err := p.parseKind()
		if err != nil {
			return Kind{}, err
		}
		fields = append(fields, Field{Name: name, Kind: fk})
	}
	return NewStruct(fields...), nil
}

func (p *parser) parseUnion() (Kind, error) {
	if err := p.expect('<'); err != nil {
		return Kind{}, err
	}
	var branches []Kind
	for !p.eat('>') {
		if len(branches) > 0 {
			if err := p.expect(','); err != nil {
				return Kind{}, err
			}
		}
		bk, err := p.parseKind()
		if err != nil {
			return Kind{}, err
		}
		branches = append(branches, bk)
	}
	return NewUnion(branches...), nil
}

// takeWord consumes a run of letters, digits, underscores and spaces (for
// multi-word names in field positions spaces are not meaningful, so they
// are trimmed).
func (p *parser) takeWord() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '<' || c == '>' || c == ',' || c == ':' || c == '(' || c == ')' {
			break
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *parser) takeInt() (int32, error) {
	word := p.takeWord()
	n, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		return 0, p.errorf("expected an integer, got %q", word)
	}
	return int32(n), nil
}

func (p *parser) expect(c byte) error {
	if !p.eat(c) {
		return p.errorf("expected %q", string(c))
	}
	return nil
}

func (p *parser) eat(c byte) bool {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}
