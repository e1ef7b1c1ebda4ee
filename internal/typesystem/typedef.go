package typesystem

// TypeDef couples a lattice entry with the two effect classes the checker
// tracks per expression: fallibility (may produce a recoverable runtime
// error) and abortability (contains an abort form whose failure terminates
// the whole program run). The two never mix: discharging fallibility via the
// abort form sets Abortable, it does not keep Fallible.
type TypeDef struct {
	kind      *Kind
	fallible  bool
	abortable bool
}

func Def(k *Kind) TypeDef { return TypeDef{kind: k} }

func DefAny() TypeDef { return TypeDef{kind: Any()} }

func (d TypeDef) Kind() *Kind     { return d.kind }
func (d TypeDef) Fallible() bool  { return d.fallible }
func (d TypeDef) Abortable() bool { return d.abortable }

func (d TypeDef) WithKind(k *Kind) TypeDef {
	d.kind = k
	return d
}

func (d TypeDef) WithFallible() TypeDef {
	d.fallible = true
	return d
}

// Infallible discharges the fallibility bit, keeping kind and abortability.
func (d TypeDef) Infallible() TypeDef {
	d.fallible = false
	return d
}

func (d TypeDef) WithAbortable() TypeDef {
	d.abortable = true
	return d
}

// Union joins the kinds and takes the union of both effect bits.
func (d TypeDef) Union(other TypeDef) TypeDef {
	return TypeDef{
		kind:      d.kind.Union(other.kind),
		fallible:  d.fallible || other.fallible,
		abortable: d.abortable || other.abortable,
	}
}

func (d TypeDef) String() string {
	s := d.kind.String()
	if d.fallible {
		s += " (fallible)"
	}
	return s
}
