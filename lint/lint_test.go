package lint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/gopher-lua/parse"
)

func run(t *testing.T, src string) []Diagnostic {
	t.Helper()
	std, err := ParseStandardLibrary(RedisStd())
	require.NoError(t, err)
	c, err := NewChecker(DefaultConfig(), std)
	require.NoError(t, err)
	chunk, err := parse.Parse(strings.NewReader(src), "<script>")
	require.NoError(t, err)
	return c.Check(chunk, src)
}

func codes(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

func TestCheck_Clean(t *testing.T) {
	src := "local v = redis.call('GET', KEYS[1])\nif not v then\n  return redis.error_reply('missing')\nend\nreturn cjson.encode({ value = tonumber(v) })"
	assert.Empty(t, run(t, src))
}

func TestCheck_UndefinedVariable(t *testing.T) {
	src := "return foo"
	ds := run(t, src)
	require.Len(t, ds, 1)
	assert.Equal(t, "undefined_variable", ds[0].Code)
	assert.Equal(t, Error, ds[0].Severity)
	assert.Equal(t, "`foo` is not defined", ds[0].Message)
	assert.Equal(t, Range{Start: 7, End: 10}, ds[0].Primary)
}

func TestCheck_UndefinedLocatesOccurrence(t *testing.T) {
	src := "local t = { b = 1, b }\nreturn t"
	ds := run(t, src)
	require.Len(t, ds, 1)
	assert.Equal(t, "undefined_variable", ds[0].Code)
	assert.Equal(t, Range{Start: 19, End: 20}, ds[0].Primary)
}

func TestCheck_FieldsAreNotVariables(t *testing.T) {
	src := "local t = {}\nt.foo = 1\nreturn t.foo, t:bar()"
	assert.Empty(t, run(t, src))
}

func TestCheck_ARGVIsNotStandard(t *testing.T) {
	ds := run(t, "return ARGV[1]")
	require.Len(t, ds, 1)
	assert.Equal(t, "undefined_variable", ds[0].Code)
}

func TestCheck_GlobalAssignment(t *testing.T) {
	ds := run(t, "x = 1")
	require.Len(t, ds, 1)
	assert.Equal(t, "global_assignment", ds[0].Code)
	assert.Equal(t, Range{Start: 0, End: 1}, ds[0].Primary)

	ds = run(t, "function helper() return 1 end")
	assert.Equal(t, []string{"global_assignment"}, codes(ds))
}

func TestCheck_IncorrectStandardLibraryUse(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"return redis.nope('x')", "standard library global `redis` has no field `nope`"},
		{"return string('x')", "standard library global `string` is not a function"},
		{"return tostring.x", "standard library function `tostring` has no field `x`"},
	}
	for _, tt := range tests {
		ds := run(t, tt.src)
		require.Len(t, ds, 1, tt.src)
		assert.Equal(t, "incorrect_standard_library_use", ds[0].Code)
		assert.Equal(t, tt.msg, ds[0].Message)
	}
}

func TestCheck_LocalShadowsStd(t *testing.T) {
	src := "local string = {}\nreturn string.nope"
	assert.Empty(t, run(t, src))
}

func TestCheck_UnusedVariable(t *testing.T) {
	ds := run(t, "local x = 1\nreturn 2")
	require.Len(t, ds, 1)
	assert.Equal(t, "unused_variable", ds[0].Code)
	assert.Equal(t, Warning, ds[0].Severity)
	assert.Equal(t, Range{Start: 6, End: 7}, ds[0].Primary)

	ds = run(t, "local x = 1\nx = 2\nreturn 2")
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0].Message, "assigned a value")

	assert.Empty(t, run(t, "local _x = 1\nreturn 2"))
}

func TestCheck_Shadowing(t *testing.T) {
	src := "local x = 1\ndo\n  local x = 2\n  return x\nend\nreturn x"
	ds := run(t, src)
	require.Len(t, ds, 1)
	assert.Equal(t, "shadowing", ds[0].Code)
	assert.Equal(t, strings.Index(src, "local x = 2")+6, ds[0].Primary.Start)
}

func TestCheck_UnbalancedAssignments(t *testing.T) {
	ds := run(t, "local a, b = 1\nreturn a, b")
	assert.Equal(t, []string{"unbalanced_assignments"}, codes(ds))

	ds = run(t, "local a = 1, 2\nreturn a")
	assert.Equal(t, []string{"unbalanced_assignments"}, codes(ds))

	assert.Empty(t, run(t, "local a, b = redis.call('MGET', 'x', 'y')\nreturn a, b"))
}

func TestCheck_DivideByZero(t *testing.T) {
	ds := run(t, "return 1 / 0")
	assert.Equal(t, []string{"divide_by_zero"}, codes(ds))
	assert.Empty(t, run(t, "return 1 / 2"))
}

func TestCheck_EmptyIf(t *testing.T) {
	ds := run(t, "if KEYS[1] then\nend\nreturn 1")
	assert.Equal(t, []string{"empty_if"}, codes(ds))
}

func TestCheck_SortedByStart(t *testing.T) {
	ds := run(t, "local unused = 1\nreturn foo + bar")
	require.Len(t, ds, 3)
	for i := 1; i < len(ds); i++ {
		assert.LessOrEqual(t, ds[i-1].Primary.Start, ds[i].Primary.Start)
	}
}

func TestCheck_DefinedGlobal(t *testing.T) {
	std, err := ParseStandardLibrary(RedisStd() + "\n[ARGV]\nproperty = true\n")
	require.NoError(t, err)
	c, err := NewChecker(DefaultConfig(), std)
	require.NoError(t, err)
	src := "return ARGV[1]"
	chunk, err := parse.Parse(strings.NewReader(src), "<script>")
	require.NoError(t, err)
	assert.Empty(t, c.Check(chunk, src))
}

func TestNewChecker_Config(t *testing.T) {
	std, err := ParseStandardLibrary(RedisStd())
	require.NoError(t, err)

	_, err = NewChecker(Config{Rules: map[string]Level{"no_such_rule": Deny}}, std)
	assert.ErrorContains(t, err, "unknown lint rule")

	_, err = NewChecker(Config{Rules: map[string]Level{"shadowing": "loud"}}, std)
	assert.ErrorContains(t, err, "invalid level")

	cfg := DefaultConfig().Merge(Config{Rules: map[string]Level{"unused_variable": Allow}})
	c, err := NewChecker(cfg, std)
	require.NoError(t, err)
	assert.Equal(t, Allow, c.Level("unused_variable"))
	assert.Equal(t, Deny, c.Level("undefined_variable"))

	src := "local x = 1\nreturn 2"
	chunk, err := parse.Parse(strings.NewReader(src), "<script>")
	require.NoError(t, err)
	assert.Empty(t, c.Check(chunk, src))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("[rules]\nshadowing = \"deny\"\n")
	require.NoError(t, err)
	assert.Equal(t, Deny, cfg.Rules["shadowing"])

	_, err = ParseConfig("[rules\n")
	assert.Error(t, err)
}

func TestStandardLibrary(t *testing.T) {
	std, err := ParseStandardLibrary(RedisStd())
	require.NoError(t, err)

	redis, ok := std.Lookup("redis")
	require.True(t, ok)
	assert.True(t, redis.IsTable())
	assert.True(t, redis.HasField("call"))
	assert.False(t, redis.HasField("nope"))

	keys, ok := std.Lookup("KEYS")
	require.True(t, ok)
	assert.True(t, keys.Property)
	assert.True(t, keys.HasField("anything"))

	_, ok = std.Lookup("ARGV")
	assert.False(t, ok)
}
