package dataset

import (
	"fmt"
	"strings"
)

// ParseGenres decodes a list literal such as ['Action', "Sci-Fi"] into its
// string elements. Both quote styles, backslash escapes and a trailing comma
// are accepted; any non-string element is an error.
func ParseGenres(cell string) ([]string, error) {
	s := strings.TrimSpace(cell)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("not a list literal")
	}

	p := &listScanner{src: s[1 : len(s)-1]}
	genres := []string{}
	for {
		p.skipSpace()
		if p.done() {
			return genres, nil
		}
		value, err := p.quoted()
		if err != nil {
			return nil, err
		}
		genres = append(genres, value)

		p.skipSpace()
		if p.done() {
			return genres, nil
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("expected ',' at offset %d", p.pos+1)
		}
		p.pos++
	}
}

type listScanner struct {
	src string
	pos int
}

func (p *listScanner) done() bool { return p.pos >= len(p.src) }

func (p *listScanner) skipSpace() {
	for !p.done() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *listScanner) quoted() (string, error) {
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected quoted string at offset %d", p.pos+1)
	}
	p.pos++

	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}
