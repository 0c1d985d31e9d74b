package script

import (
	"fmt"

	"github.com/rubiojr/redislua/token"
)

// Kind is the binding time of a placeholder.
type Kind int

const (
	// Cap placeholders (@name) are bound when the script is constructed.
	Cap Kind = iota
	// Var placeholders ($name) are bound later through a builder method.
	Var
)

func (k Kind) String() string {
	if k == Var {
		return "var"
	}
	return "cap"
}

// Arg is one registered placeholder.
type Arg struct {
	Key   token.Key
	Host  token.Token // first occurrence in the host source
	Lua   string      // internal Lua local, __internal_from_args_<Index>
	ARGV  string      // ARGV[<Index+1>]
	Kind  Kind
	Index int
}

// Name is the placeholder identifier as written after the sigil.
func (a Arg) Name() string { return a.Key.Text }

// Args is an ordered, de-duplicated placeholder registry. Caps and Vars
// share a single index sequence in order of first occurrence.
type Args struct {
	list  []Arg
	index map[token.Key]int
}

func newArgs() *Args {
	return &Args{index: make(map[token.Key]int)}
}

// Add registers t if it is new and returns its Arg.
func (a *Args) Add(t token.Token) Arg {
	if i, ok := a.index[t.Key()]; ok {
		return a.list[i]
	}
	n := len(a.list)
	kind := Cap
	if t.Attr == token.Var {
		kind = Var
	}
	arg := Arg{
		Key:   t.Key(),
		Host:  t,
		Lua:   fmt.Sprintf("__internal_from_args_%d", n),
		ARGV:  fmt.Sprintf("ARGV[%d]", n+1),
		Kind:  kind,
		Index: n,
	}
	a.index[arg.Key] = n
	a.list = append(a.list, arg)
	return arg
}

// All returns every placeholder in registration order.
func (a *Args) All() []Arg { return a.list }

// Len returns the number of placeholders.
func (a *Args) Len() int { return len(a.list) }

func (a *Args) filter(k Kind) []Arg {
	var out []Arg
	for _, arg := range a.list {
		if arg.Kind == k {
			out = append(out, arg)
		}
	}
	return out
}
