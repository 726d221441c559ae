package gen

import "github.com/twinekit/twinegen/idl"

// generateEnum emits the enum type, its resolved member constants, the
// String mapping, and the FromString reverse mapping. Enums have no
// native "absent" state, so the reverse mapping hands back an
// out-of-range sentinel alongside the error.
func (g *Generator) generateEnum(w *writer, e *idl.Enum) {
	name := Publicize(e.Name)
	resolved := e.ResolvedValues()

	g.docComment(w, e.Doc)
	w.p("type %s int64", name)
	w.nl()
	w.p("const (")
	w.in()
	for _, m := range resolved {
		w.p("%s_%s %s = %d", name, m.Name, name, m.Value)
	}
	w.out()
	w.p(")")
	w.nl()

	w.p("func (p %s) String() string {", name)
	w.in()
	w.p("switch p {")
	seen := make(map[int64]bool, len(resolved))
	for _, m := range resolved {
		// duplicate values legal in the IDL; only the first name can
		// appear as a switch case
		if seen[m.Value] {
			continue
		}
		seen[m.Value] = true
		w.p("case %s_%s:", name, m.Name)
		w.p("\treturn \"%s_%s\"", name, m.Name)
	}
	w.p("}")
	w.p("return \"<UNSET>\"")
	w.out()
	w.p("}")
	w.nl()

	w.p("func %sFromString(s string) (%s, error) {", name, name)
	w.in()
	w.p("switch s {")
	for _, m := range resolved {
		w.p("case \"%s_%s\", \"%s\":", name, m.Name, m.Name)
		w.p("\treturn %s_%s, nil", name, m.Name)
	}
	w.p("}")
	w.p("return %s(math.MinInt32 - 1), fmt.Errorf(\"not a valid %s string: %%q\", s)", name, name)
	w.out()
	w.p("}")
	w.nl()
}
