package dispatch

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fragment is a hand-written stand-in for a generated terminal stage.
type fragment struct {
	inner Unit
	info  *Info
	args  []any
}

func newFragment(name, body string, args ...any) fragment {
	return fragment{inner: Empty(), info: NewInfo(name, body, len(args)), args: args}
}

func (f fragment) Apply(inv *Invocation) {
	f.inner.Apply(inv)
	for _, a := range f.args {
		inv.Arg(a)
	}
}

func (f fragment) Info(infos []*Info) []*Info {
	return append(f.inner.Info(infos), f.info)
}

func (f fragment) Take(first Unit) fragment {
	f.inner = Join(first, f.inner)
	return f
}

const (
	addTen = "local __internal_from_args_0 = ARGV[1]; \nreturn __internal_from_args_0 + 10"
	addTwo = "local __internal_from_args_0 = ARGV[1]; local __internal_from_args_1 = ARGV[2]; \nreturn __internal_from_args_0 + __internal_from_args_1"
)

func client(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestInvoke_Capture(t *testing.T) {
	rdb := client(t)
	n, err := Invoke(context.Background(), rdb, newFragment("AddTen", addTen, 5)).Int()
	require.NoError(t, err)
	assert.Equal(t, 15, n)
}

func TestInvoke_TwoVars(t *testing.T) {
	rdb := client(t)
	u := newFragment("Add", addTwo, 3, 4)

	body, args, err := Build(u)
	require.NoError(t, err)
	assert.Equal(t, addTwo, body)
	assert.Equal(t, []any{3, 4}, args)

	n, err := Invoke(context.Background(), rdb, u).Int()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestInvoke_Joined(t *testing.T) {
	rdb := client(t)
	x := newFragment("X", addTen, 1)
	y := newFragment("Y", addTen, 10)
	u := Then[fragment](x, y)

	body, args, err := Build(u)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 10}, args)
	assert.Contains(t, body, "local function __internal_script_0(ARGV)\n"+addTen+"\nend\n")
	assert.Contains(t, body, "__internal_script_0({ARGV[1]})\nreturn __internal_script_1({ARGV[2]})\n")

	n, err := Invoke(context.Background(), rdb, u).Int()
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestJoin_Ordering(t *testing.T) {
	a := newFragment("A", "return 1", "a1", "a2")
	b := newFragment("B", "return 2", "b1")
	joined := a.Take(b)

	inv := &Invocation{}
	joined.Apply(inv)
	assert.Equal(t, []any{"b1", "a1", "a2"}, inv.Args())

	infos := joined.Info(nil)
	require.Len(t, infos, 2)
	assert.Equal(t, "B", infos[0].Name)
	assert.Equal(t, "A", infos[1].Name)
}

func TestJoin_ThreeWay(t *testing.T) {
	a := newFragment("A", "return 1", "a")
	b := newFragment("B", "return 2", "b")
	c := newFragment("C", "return 3", "c")
	u := Then[fragment](Then[fragment](a, b), c)

	inv := &Invocation{}
	u.Apply(inv)
	assert.Equal(t, []any{"a", "b", "c"}, inv.Args())
}

func TestJoin_Empty(t *testing.T) {
	a := newFragment("A", "return 1")
	assert.Equal(t, Unit(a), Join(Empty(), a))
	assert.Equal(t, Unit(a), Join(a, Empty()))
	assert.Empty(t, Empty().Info(nil))
}

func TestBuild_PackedSingleFragment(t *testing.T) {
	u := newFragment("T", "local __internal_from_args_0 = ARGV[1]; \nreturn #__internal_from_args_0", []int{1, 2})
	body, args, err := Build(u)
	require.NoError(t, err)
	assert.Equal(t, []any{"\x92\x01\x02"}, args)
	assert.Contains(t, body, "return __internal_script_0({cmsgpack.unpack(ARGV[1])})")
}

func TestBuild_Errors(t *testing.T) {
	_, _, err := Build(Empty())
	assert.ErrorIs(t, err, ErrNoScript)

	bad := fragment{inner: Empty(), info: NewInfo("Bad", "return 1", 2), args: []any{1}}
	_, _, err = Build(bad)
	assert.ErrorIs(t, err, ErrArgCount)

	_, _, err = Build(newFragment("Chan", "return 1", make(chan int)))
	assert.ErrorIs(t, err, ErrUnsupportedArg)
}

func TestInvoke_BuildErrorIsCmdError(t *testing.T) {
	rdb := client(t)
	err := Invoke(context.Background(), rdb, Empty()).Err()
	assert.ErrorIs(t, err, ErrNoScript)
}

func TestInvokeAsync(t *testing.T) {
	rdb := client(t)
	ch := InvokeAsync(context.Background(), rdb, newFragment("AddTen", addTen, 32))
	cmd, ok := <-ch
	require.True(t, ok)
	n, err := cmd.Int()
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestInvokeAsync_BuildError(t *testing.T) {
	rdb := client(t)
	cmd := <-InvokeAsync(context.Background(), rdb, Empty())
	assert.ErrorIs(t, cmd.Err(), ErrNoScript)
}
