package simcir

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// portPath is a parsed "<deviceId>.<in|out><index>" port path.
//
type portPath struct {
	id    string
	kind  NodeKind
	index int
}

func formatPath(id string, k NodeKind, i int) string {
	return id + "." + k.String() + strconv.Itoa(i)
}

func isWordChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// parsePath parses a port path. For example:
//
//	parsePath("dev3.out0") // returns portPath{"dev3", Output, 0}
//
func parsePath(s string) (portPath, error) {
	var p portPath
	pos := 0
	for pos < len(s) && isWordChar(s[pos]) {
		pos++
	}
	if pos == 0 {
		return p, parseError(s, pos, "expected device id")
	}
	p.id = s[:pos]
	if pos == len(s) || s[pos] != '.' {
		return p, parseError(s, pos, "expected '.'")
	}
	pos++
	switch {
	case strings.HasPrefix(s[pos:], "in"):
		p.kind = Input
		pos += 2
	case strings.HasPrefix(s[pos:], "out"):
		p.kind = Output
		pos += 3
	default:
		return p, parseError(s, pos, "expected in or out")
	}
	start := pos
	for pos < len(s) && '0' <= s[pos] && s[pos] <= '9' {
		pos++
	}
	if pos == start {
		return p, parseError(s, pos, "expected port index")
	}
	if pos != len(s) {
		return p, parseError(s, pos, "expected end of input")
	}
	n, err := strconv.Atoi(s[start:])
	if err != nil {
		return p, parseError(s, start, "port index out of range")
	}
	p.index = n
	return p, nil
}

// parsePlacement parses a layout placement code like "T2" or "R14".
//
func parsePlacement(code string) (edge byte, offset int, err error) {
	if len(code) < 2 {
		return 0, 0, parseError(code, len(code), "placement code too short")
	}
	switch edge = code[0]; edge {
	case 'T', 'B', 'L', 'R':
	default:
		return 0, 0, parseError(code, 0, "expected T, B, L or R")
	}
	for i := 1; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return 0, 0, parseError(code, i, "expected digit")
		}
	}
	offset, err = strconv.Atoi(code[1:])
	if err != nil {
		return 0, 0, parseError(code, 1, "offset out of range")
	}
	return edge, offset, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
