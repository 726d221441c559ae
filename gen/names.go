package gen

import "strings"

// Identifier mapping from IDL names to Go names. Module-qualified names
// ("shared.SharedStruct") split at the LAST dot; the module prefix
// passes through unchanged and only the final segment is transformed.

// Publicize produces an exported Go name: first letter upper-cased, and
// every underscore followed by a lowercase letter folded into that
// letter's capital. The fold is one left-to-right pass, never recursive
// on its own output.
func Publicize(name string) string {
	if name == "" {
		return name
	}
	prefix := ""
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		prefix = name[:dot+1]
		name = name[dot+1:]
		if name == "" {
			return prefix
		}
	}
	return prefix + casedFold(name, true, false)
}

// Privatize produces an unexported Go name: first letter lower-cased,
// with the same underscore fold (here folding any letter, not just
// lowercase ones).
func Privatize(name string) string {
	if name == "" {
		return name
	}
	return casedFold(name, false, true)
}

// NewPrefix names the constructor for a record type, preserving a
// module prefix: "shared.SharedStruct" becomes "shared.NewSharedStruct".
func NewPrefix(name string) string {
	if name == "" {
		return name
	}
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		return name[:dot+1] + "New" + Publicize(name[dot+1:])
	}
	return "New" + Publicize(name)
}

func casedFold(name string, upperFirst, foldAnyLetter bool) string {
	b := []byte(name)
	if upperFirst {
		if b[0] >= 'a' && b[0] <= 'z' {
			b[0] -= 'a' - 'A'
		}
	} else {
		if b[0] >= 'A' && b[0] <= 'Z' {
			b[0] += 'a' - 'A'
		}
	}

	out := make([]byte, 0, len(b))
	out = append(out, b[0])
	for i := 1; i < len(b); i++ {
		if b[i] == '_' && i < len(b)-1 {
			next := b[i+1]
			lower := next >= 'a' && next <= 'z'
			upper := next >= 'A' && next <= 'Z'
			if lower || (foldAnyLetter && upper) {
				if lower {
					next -= 'a' - 'A'
				}
				out = append(out, next)
				i++
				continue
			}
		}
		out = append(out, b[i])
	}
	return string(out)
}

// SafeName guards a variable name against Go reserved words. The
// original casing comes back unchanged unless the lowercase form
// exactly equals a reserved word, in which case a disambiguating
// suffix is appended to the lowercase form. The set is closed on
// purpose: each word is matched individually, and "error" rides along
// because shadowing the builtin breaks generated signatures.
func SafeName(name string) string {
	if name == "" {
		return name
	}
	switch strings.ToLower(name) {
	case "break":
	case "case", "chan", "const", "continue":
	case "default", "defer":
	case "else", "error":
	case "fallthrough", "for", "func":
	case "go", "goto":
	case "if", "import", "interface":
	case "map":
	case "package":
	case "range", "return":
	case "select", "struct", "switch":
	case "type":
	case "var":
	default:
		return name
	}
	return strings.ToLower(name) + "_a1"
}
