// Package dispatch is the runtime used by generated script builders. It
// collects bound arguments, fuses joined fragments into one Lua script and
// sends it to Redis.
package dispatch

// Info describes one script fragment: its wrapped body and the number of
// ARGV slots the body reads.
type Info struct {
	Name string
	Body string
	Args int
}

// NewInfo returns the description of a fragment.
func NewInfo(name, body string, args int) *Info {
	return &Info{Name: name, Body: body, Args: args}
}

// Unit is a fully bound script fragment, possibly the product of joins.
// Apply appends the fragment's arguments; Info appends its fragment
// descriptions. Both must visit fragments in the same order.
type Unit interface {
	Apply(inv *Invocation)
	Info(infos []*Info) []*Info
}

type empty struct{}

func (empty) Apply(*Invocation)          {}
func (empty) Info(infos []*Info) []*Info { return infos }

// Empty returns the unit with no fragments and no arguments.
func Empty() Unit { return empty{} }

type join struct {
	first  Unit
	second Unit
}

func (j join) Apply(inv *Invocation) {
	j.first.Apply(inv)
	j.second.Apply(inv)
}

func (j join) Info(infos []*Info) []*Info {
	return j.second.Info(j.first.Info(infos))
}

// Join returns a unit running every effect of first, then every effect of
// second.
func Join(first, second Unit) Unit {
	if _, ok := first.(empty); ok {
		return second
	}
	if _, ok := second.(empty); ok {
		return first
	}
	return join{first: first, second: second}
}

// Taker is implemented by every builder stage. Take returns the same stage
// with first's effects scheduled before its own.
type Taker[T any] interface {
	Take(first Unit) T
}

// Then combines a fully bound left side with next: the result is next with
// first joined in front, keeping next's unfilled setters.
func Then[T Taker[T]](first Unit, next T) T {
	return next.Take(first)
}
