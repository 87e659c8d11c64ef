package trellis

import (
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

// ParseSVGPath parses SVG path data ("M10 10 L20 20 Z", arcs and relative
// commands included) into a Path.
func ParseSVGPath(data string) (*Path, error) {
	s := &svgScanner{b: []byte(data)}
	p := NewPath()
	var cmd byte
	var lastCtrl Vec2 // reflected control point for S/T
	var lastCmd byte
	for {
		s.skipSeparators()
		if s.eof() {
			break
		}
		if c := s.b[s.pos]; isSVGCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("parse svg path: expected command at offset %d", s.pos)
		}
		cur := p.Current()
		rel := cmd >= 'a'
		var ox, oy float64
		if rel {
			ox, oy = cur.X, cur.Y
		}
		switch cmd {
		case 'M', 'm':
			pt, err := s.points(1)
			if err != nil {
				return nil, err
			}
			p.MoveTo(ox+pt[0], oy+pt[1])
			// Subsequent pairs are implicit line-tos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			pt, err := s.points(1)
			if err != nil {
				return nil, err
			}
			p.LineTo(ox+pt[0], oy+pt[1])
		case 'H', 'h':
			v, err := s.number()
			if err != nil {
				return nil, err
			}
			p.LineTo(ox+v, cur.Y)
		case 'V', 'v':
			v, err := s.number()
			if err != nil {
				return nil, err
			}
			p.LineTo(cur.X, oy+v)
		case 'C', 'c':
			pt, err := s.points(3)
			if err != nil {
				return nil, err
			}
			p.CubicTo(ox+pt[0], oy+pt[1], ox+pt[2], oy+pt[3], ox+pt[4], oy+pt[5])
			lastCtrl = Vec2{ox + pt[2], oy + pt[3]}
		case 'S', 's':
			pt, err := s.points(2)
			if err != nil {
				return nil, err
			}
			c1 := cur
			if lastCmd == 'C' || lastCmd == 'S' {
				c1 = Vec2{2*cur.X - lastCtrl.X, 2*cur.Y - lastCtrl.Y}
			}
			p.CubicTo(c1.X, c1.Y, ox+pt[0], oy+pt[1], ox+pt[2], oy+pt[3])
			lastCtrl = Vec2{ox + pt[0], oy + pt[1]}
		case 'Q', 'q':
			pt, err := s.points(2)
			if err != nil {
				return nil, err
			}
			p.QuadTo(ox+pt[0], oy+pt[1], ox+pt[2], oy+pt[3])
			lastCtrl = Vec2{ox + pt[0], oy + pt[1]}
		case 'T', 't':
			pt, err := s.points(1)
			if err != nil {
				return nil, err
			}
			c := cur
			if lastCmd == 'Q' || lastCmd == 'T' {
				c = Vec2{2*cur.X - lastCtrl.X, 2*cur.Y - lastCtrl.Y}
			}
			p.QuadTo(c.X, c.Y, ox+pt[0], oy+pt[1])
			lastCtrl = c
		case 'A', 'a':
			rx, err := s.number()
			if err != nil {
				return nil, err
			}
			ry, err := s.number()
			if err != nil {
				return nil, err
			}
			rot, err := s.number()
			if err != nil {
				return nil, err
			}
			large, err := s.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := s.flag()
			if err != nil {
				return nil, err
			}
			pt, err := s.points(1)
			if err != nil {
				return nil, err
			}
			p.AddArc(rx, ry, rot, large, sweep, ox+pt[0], oy+pt[1])
		case 'Z', 'z':
			p.Close()
		}
		lastCmd = upper(cmd)
		if lastCmd == 'Z' {
			// Z takes no arguments, so it never repeats implicitly.
			cmd = 0
		}
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("parse svg path: empty path")
	}
	return p, nil
}

type svgScanner struct {
	b   []byte
	pos int
}

func (s *svgScanner) eof() bool {
	return s.pos >= len(s.b)
}

func (s *svgScanner) skipSeparators() {
	for !s.eof() {
		switch s.b[s.pos] {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *svgScanner) number() (float64, error) {
	s.skipSeparators()
	if s.eof() {
		return 0, fmt.Errorf("parse svg path: unexpected end, expected number")
	}
	f, n := strconv.ParseFloat(s.b[s.pos:])
	if n == 0 {
		return 0, fmt.Errorf("parse svg path: expected number at offset %d", s.pos)
	}
	s.pos += n
	return f, nil
}

// flag reads an arc flag, which may be written without separators ("011").
func (s *svgScanner) flag() (bool, error) {
	s.skipSeparators()
	if s.eof() {
		return false, fmt.Errorf("parse svg path: unexpected end, expected flag")
	}
	switch s.b[s.pos] {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	}
	return false, fmt.Errorf("parse svg path: expected flag at offset %d", s.pos)
}

func (s *svgScanner) points(n int) ([]float64, error) {
	out := make([]float64, 2*n)
	for i := range out {
		v, err := s.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func isSVGCommand(c byte) bool {
	switch upper(c) {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
