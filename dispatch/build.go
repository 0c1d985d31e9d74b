package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoScript is returned when a unit holds no fragment.
	ErrNoScript = errors.New("no script to invoke")
	// ErrArgCount is returned when the bound arguments do not match the
	// fragments' declared ARGV slots.
	ErrArgCount = errors.New("script argument count mismatch")
)

// Build applies u and returns the Lua source to send with its arguments.
// A single fragment without packed arguments is sent as is. Otherwise every
// fragment becomes a local function receiving its own slice of ARGV, packed
// slots are unpacked with cmsgpack, and the last fragment's result is
// returned.
func Build(u Unit) (string, []any, error) {
	inv := &Invocation{}
	u.Apply(inv)
	if err := inv.Err(); err != nil {
		return "", nil, err
	}
	infos := u.Info(nil)
	if len(infos) == 0 {
		return "", nil, ErrNoScript
	}

	want := 0
	for _, info := range infos {
		want += info.Args
	}
	if want != len(inv.args) {
		return "", nil, fmt.Errorf("%w: fragments read %d, got %d", ErrArgCount, want, len(inv.args))
	}

	if len(infos) == 1 && !inv.anyPacked(0, len(inv.args)) {
		return infos[0].Body, inv.args, nil
	}
	return genScript(infos, inv.packed), inv.args, nil
}

func genScript(infos []*Info, packed []bool) string {
	var b strings.Builder
	for i, info := range infos {
		fmt.Fprintf(&b, "local function __internal_script_%d(ARGV)\n%s\nend\n", i, info.Body)
	}

	next := 0
	for i, info := range infos {
		if i == len(infos)-1 {
			b.WriteString("return ")
		}
		fmt.Fprintf(&b, "__internal_script_%d({", i)
		for j := 0; j < info.Args; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			slot := next + j
			if packed[slot] {
				fmt.Fprintf(&b, "cmsgpack.unpack(ARGV[%d])", slot+1)
			} else {
				fmt.Fprintf(&b, "ARGV[%d]", slot+1)
			}
		}
		b.WriteString("})\n")
		next += info.Args
	}
	return b.String()
}
