package engine

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// kwPrefix marks keyword names in rewritten source.
const kwPrefix = "__kw_"

// preprocessSource rewrites zone script text into something zygomys reads:
//
//   - :name becomes the string "__kw_name", so builtins can tell keywords
//     apart without registering a symbol per keyword;
//   - a hyphen joining two identifier parts becomes an underscore
//     (zone-height -> zone_height), since zygomys reads it as minus;
//   - ; and ;; comments become // comments.
//
// String literals are copied untouched and := is left alone.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	n := len(source)
	for i := 0; i < n; {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			end := literalEnd(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < n && source[i] == ';' {
				i++
			}
			end := n
			if nl := strings.IndexByte(source[i:], '\n'); nl >= 0 {
				end = i + nl
			}
			out.WriteString("//")
			out.WriteString(source[i:end])
			i = end

		case c == ':' && i+1 < n && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < n && isLetter(source[i+1]):
			end := i + 1
			for end < n && isKeywordChar(source[end]) {
				end++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(source[i+1 : end])
			out.WriteByte('"')
			i = end

		case c == '-' && i > 0 && i+1 < n && isIdentChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// literalEnd returns the index just past the string literal opening at
// start. Double-quoted literals honour backslash escapes; an unterminated
// literal runs to the end of the source.
func literalEnd(source string, start int) int {
	quote := source[start]
	for j := start + 1; j < len(source); j++ {
		switch {
		case quote == '"' && source[j] == '\\' && j+1 < len(source):
			j++
		case source[j] == quote:
			return j + 1
		}
	}
	return len(source)
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || ('0' <= c && c <= '9') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

// scriptArgs is a builtin's argument list split into positional values and
// keyword values.
type scriptArgs struct {
	pos []zygo.Sexp
	kw  map[string]zygo.Sexp
}

// splitArgs pairs every keyword with the value after it. A trailing keyword
// with no value maps to SexpNull.
func splitArgs(args []zygo.Sexp) scriptArgs {
	sa := scriptArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keywordName(args[i])
		if !ok {
			sa.pos = append(sa.pos, args[i])
			continue
		}
		if i+1 < len(args) {
			i++
			sa.kw[name] = args[i]
		} else {
			sa.kw[name] = zygo.SexpNull
		}
	}
	return sa
}

func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

func typeError(want string, s zygo.Sexp) error {
	return fmt.Errorf("expected %s, got %T (%s)", want, s, s.SexpString(nil))
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, typeError("number", s)
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", typeError("string", s)
}

func toPoint(s zygo.Sexp) (v2.Vec, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.pt, nil
	}
	return v2.Vec{}, typeError("pt", s)
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, typeError("vec3", s)
}

// toZoneID accepts a zone reference or a plain id string.
func toZoneID(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpZoneRef:
		return v.id, nil
	case *zygo.SexpStr:
		return v.S, nil
	}
	return "", typeError("zone reference or id", s)
}

// toSlice accepts a list, an array or the empty list.
func toSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
