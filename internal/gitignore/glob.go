package gitignore

import "errors"

var (
	errDanglingEscape    = errors.New("dangling escape at end of pattern")
	errUnterminatedClass = errors.New("unterminated character class")
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokAny               // ?
	tokStar              // *
	tokClass             // [...]
)

type token struct {
	kind  tokenKind
	r     rune
	class *charClass
}

type runeRange struct {
	lo, hi rune
}

type charClass struct {
	negated bool
	ranges  []runeRange
}

func (c *charClass) matches(r rune) bool {
	in := false
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			in = true
			break
		}
	}
	return in != c.negated
}

// parseGlob tokenizes one path segment.
func parseGlob(seg string) ([]token, error) {
	rs := []rune(seg)
	tokens := make([]token, 0, len(rs))

	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			if i+1 >= len(rs) {
				return nil, errDanglingEscape
			}
			i++
			tokens = append(tokens, token{kind: tokLiteral, r: rs[i]})
		case '?':
			tokens = append(tokens, token{kind: tokAny})
		case '*':
			// Runs of stars inside a segment collapse to one.
			if n := len(tokens); n > 0 && tokens[n-1].kind == tokStar {
				continue
			}
			tokens = append(tokens, token{kind: tokStar})
		case '[':
			cls, end, err := parseClass(rs, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokClass, class: cls})
			i = end
		default:
			tokens = append(tokens, token{kind: tokLiteral, r: rs[i]})
		}
	}
	return tokens, nil
}

// parseClass parses a bracket expression starting at rs[start] == '['.
// It returns the index of the closing ']'.
func parseClass(rs []rune, start int) (*charClass, int, error) {
	cls := &charClass{}
	i := start + 1
	if i < len(rs) && (rs[i] == '!' || rs[i] == '^') {
		cls.negated = true
		i++
	}

	first := true
	for i < len(rs) {
		c := rs[i]
		if c == ']' && !first {
			return cls, i, nil
		}
		first = false

		if c == '\\' {
			i++
			if i >= len(rs) {
				break
			}
			c = rs[i]
		}

		lo, hi := c, c
		if i+2 < len(rs) && rs[i+1] == '-' && rs[i+2] != ']' {
			i += 2
			hi = rs[i]
			if hi == '\\' && i+1 < len(rs) {
				i++
				hi = rs[i]
			}
		}
		cls.ranges = append(cls.ranges, runeRange{lo: lo, hi: hi})
		i++
	}
	return nil, 0, errUnterminatedClass
}

// matchTokens matches a tokenized segment against a name using
// star backtracking. Names never contain '/'.
func matchTokens(tokens []token, name []rune) bool {
	ti, ni := 0, 0
	starT, starN := -1, 0

	for ni < len(name) {
		if ti < len(tokens) {
			t := tokens[ti]
			switch t.kind {
			case tokStar:
				starT, starN = ti, ni
				ti++
				continue
			case tokAny:
				ti++
				ni++
				continue
			case tokLiteral:
				if t.r == name[ni] {
					ti++
					ni++
					continue
				}
			case tokClass:
				if t.class.matches(name[ni]) {
					ti++
					ni++
					continue
				}
			}
		}
		if starT >= 0 {
			starN++
			ni = starN
			ti = starT + 1
			continue
		}
		return false
	}

	for ti < len(tokens) && tokens[ti].kind == tokStar {
		ti++
	}
	return ti == len(tokens)
}
