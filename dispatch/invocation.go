package dispatch

// Invocation accumulates the wire arguments of a dispatch in order. The
// first encoding error is kept and reported when the script is built.
type Invocation struct {
	args   []any
	packed []bool
	err    error
}

// Arg encodes v and appends it.
func (inv *Invocation) Arg(v any) *Invocation {
	wire, packed, err := Encode(v)
	if err != nil {
		if inv.err == nil {
			inv.err = err
		}
		wire = ""
	}
	inv.args = append(inv.args, wire)
	inv.packed = append(inv.packed, packed)
	return inv
}

// Args returns the wire arguments.
func (inv *Invocation) Args() []any { return inv.args }

// Packed reports whether argument i is msgpack encoded.
func (inv *Invocation) Packed(i int) bool { return inv.packed[i] }

// Err returns the first encoding error.
func (inv *Invocation) Err() error { return inv.err }

func (inv *Invocation) anyPacked(from, to int) bool {
	for _, p := range inv.packed[from:to] {
		if p {
			return true
		}
	}
	return false
}
