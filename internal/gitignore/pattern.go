package gitignore

import (
	"fmt"
	"strings"
)

// SegmentKind is the variant of one slash-separated pattern segment.
type SegmentKind int

const (
	// SegmentLiteral matches a path segment exactly.
	SegmentLiteral SegmentKind = iota
	// SegmentGlob matches a segment with *, ? or [...] wildcards.
	SegmentGlob
	// SegmentDoubleStar is a bare ** segment spanning directories.
	SegmentDoubleStar
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentGlob:
		return "glob"
	case SegmentDoubleStar:
		return "double-star"
	default:
		return "unknown"
	}
}

// Segment is one compiled component of a pattern body.
type Segment struct {
	Kind SegmentKind
	// Text is the unescaped literal for SegmentLiteral and the raw glob otherwise.
	Text string

	tokens []token
}

// match reports whether the segment matches a single path component.
func (s Segment) match(name string) bool {
	switch s.Kind {
	case SegmentLiteral:
		return s.Text == name
	case SegmentGlob:
		return matchTokens(s.tokens, []rune(name))
	case SegmentDoubleStar:
		return true
	default:
		return false
	}
}

// Pattern is one compiled ignore rule. It is immutable once compiled.
type Pattern struct {
	// Raw is the rule line with trailing whitespace removed.
	Raw string
	// Line is the 1-based line number within the source file.
	Line int

	Negated  bool
	DirOnly  bool
	Anchored bool

	Segments []Segment

	// Source is the file the pattern came from. Nil for free-standing patterns.
	Source *RuleSource

	// Err is set when the line could not be parsed. Such a pattern never matches.
	Err error

	// rooted patterns are matched against the whole scope-relative path,
	// the others against the basename only.
	rooted bool
}

// Compile parses one ignore-file line. The second return value is false for
// blank lines and comments, which produce no pattern.
func Compile(line string, lineNo int) (*Pattern, bool) {
	line = strings.TrimSuffix(line, "\r")
	line = trimTrailingSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false
	}

	p := &Pattern{Raw: line, Line: lineNo}
	body := line

	switch {
	case strings.HasPrefix(body, `\!`), strings.HasPrefix(body, `\#`):
		body = body[1:]
	case strings.HasPrefix(body, "!"):
		p.Negated = true
		body = body[1:]
	}

	if strings.HasSuffix(body, "/") && !strings.HasSuffix(body, `\/`) {
		p.DirOnly = true
		body = strings.TrimRight(body, "/")
	}

	if strings.HasPrefix(body, "/") {
		p.Anchored = true
		body = strings.TrimLeft(body, "/")
	}

	if body == "" {
		p.Err = fmt.Errorf("empty pattern")
		return p, true
	}

	p.rooted = p.Anchored || strings.Contains(body, "/")

	for _, part := range strings.Split(body, "/") {
		if part == "" {
			continue
		}
		seg, err := compileSegment(part)
		if err != nil {
			p.Err = err
			p.Segments = nil
			return p, true
		}
		p.Segments = append(p.Segments, seg)
	}

	return p, true
}

// MustCompile compiles a line and panics if it yields no pattern.
// Intended for static tables.
func MustCompile(line string) *Pattern {
	p, ok := Compile(line, 0)
	if !ok {
		panic(fmt.Sprintf("gitignore: %q is not a pattern", line))
	}
	return p
}

// trimTrailingSpace removes unescaped trailing spaces and tabs.
func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		if end >= 2 && s[end-2] == '\\' {
			break
		}
		end--
	}
	return s[:end]
}

func compileSegment(part string) (Segment, error) {
	if part == "**" {
		return Segment{Kind: SegmentDoubleStar, Text: part}, nil
	}

	tokens, err := parseGlob(part)
	if err != nil {
		return Segment{}, fmt.Errorf("segment %q: %w", part, err)
	}

	var literal strings.Builder
	for _, t := range tokens {
		if t.kind != tokLiteral {
			return Segment{Kind: SegmentGlob, Text: part, tokens: tokens}, nil
		}
		literal.WriteRune(t.r)
	}
	return Segment{Kind: SegmentLiteral, Text: literal.String()}, nil
}

// Match reports whether this single pattern matches rel, a slash-separated
// path relative to the pattern's scope. It does not consider parent
// directories, negation or precedence.
func (p *Pattern) Match(rel string, isDir bool) bool {
	if p.Err != nil || len(p.Segments) == 0 || rel == "" {
		return false
	}
	if p.DirOnly && !isDir {
		return false
	}

	parts := strings.Split(rel, "/")
	if !p.rooted {
		return p.Segments[0].match(parts[len(parts)-1])
	}
	return matchSegments(p.Segments, parts)
}

// IsLiteral reports whether the pattern contains no wildcards.
func (p *Pattern) IsLiteral() bool {
	if p.Err != nil {
		return false
	}
	for _, s := range p.Segments {
		if s.Kind != SegmentLiteral {
			return false
		}
	}
	return true
}

// LiteralPath joins the segments of a literal pattern into a path.
func (p *Pattern) LiteralPath() string {
	texts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, "/")
}

// String returns the raw rule text.
func (p *Pattern) String() string {
	return p.Raw
}

// matchSegments matches pattern segments against path components.
// A trailing ** needs at least one component; elsewhere it matches zero or more.
func matchSegments(segs []Segment, parts []string) bool {
	for len(segs) > 0 {
		s := segs[0]
		if s.Kind == SegmentDoubleStar {
			rest := segs[1:]
			if len(rest) == 0 {
				return len(parts) >= 1
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 || !s.match(parts[0]) {
			return false
		}
		segs, parts = segs[1:], parts[1:]
	}
	return len(parts) == 0
}
