package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/reoring/avrocompat"
	"github.com/reoring/avrocompat/avsc"
	"github.com/reoring/avrocompat/i18n"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "MyRecord."+name+".avsc")
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(avsc.UseDefaultDriver)
	t.Cleanup(func() { i18n.SetLanguage("en") })
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Usage:")

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "avrocompat check")

	code, _, _ = runCLI(t, "nope")
	assert.Equal(t, exitUsage, code)
}

func TestCheck_CompatibleIsSilent(t *testing.T) {
	code, stdout, stderr := runCLI(t, "check", fixture("base"), fixture("good"))
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestCheck_Verbose(t *testing.T) {
	code, stdout, stderr := runCLI(t, "check", "-v", fixture("base"), fixture("good"))
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "OK 2 schemas compatible\n", stdout)
	assert.Contains(t, stderr, "schema compatible")
	assert.Contains(t, stderr, "schema loaded")
}

func TestCheck_Incompatible(t *testing.T) {
	bad := fixture("removeNoDefault")
	code, stdout, stderr := runCLI(t, "check", "-color", "never", fixture("base"), fixture("good"), bad)
	assert.Equal(t, exitIncompatible, code)
	assert.Equal(t,
		"INCOMPATIBLE "+bad+": missing_default at MyRecord.fieldWithoutDefaultValue: field fieldWithoutDefaultValue must have default value (a=fieldWithoutDefaultValue, b=<none>)\n",
		stdout)
	assert.Contains(t, stderr, "schema rejected")
}

func TestCheck_Diff(t *testing.T) {
	code, stdout, _ := runCLI(t, "check", "-diff", fixture("base"), fixture("removeNoDefault"))
	assert.Equal(t, exitIncompatible, code)
	lines := strings.Split(stdout, "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "INCOMPATIBLE "))
	assert.Contains(t, stdout, `-       "name": "fieldWithoutDefaultValue"`)
	assert.NotContains(t, stdout, "\x1b[", "buffers are not terminals")
}

func TestCheck_ColorAlways(t *testing.T) {
	code, stdout, _ := runCLI(t, "check", "-color", "always", fixture("base"), fixture("changeFixedSize"))
	assert.Equal(t, exitIncompatible, code)
	assert.Contains(t, stdout, "\x1b[")
	assert.Contains(t, stdout, "fixed_mismatch at MyRecord.fixedField")
}

func TestCheck_Japanese(t *testing.T) {
	code, stdout, _ := runCLI(t, "check", "-lang", "ja", fixture("base"), fixture("addNoDefault"))
	assert.Equal(t, exitIncompatible, code)
	assert.Contains(t, stdout, "フィールド newField にはデフォルト値が必要です")
}

func TestCheck_FastJSONAndYAML(t *testing.T) {
	yamlBase := filepath.Join("..", "..", "testdata", "MyRecord.base.yaml")
	code, _, stderr := runCLI(t, "check", "-driver", "fastjson", yamlBase, fixture("good"))
	assert.Equal(t, exitOK, code, stderr)
}

func TestCheck_MaxDepth(t *testing.T) {
	code, _, stderr := runCLI(t, "check", "-max-depth", "1", fixture("base"), fixture("good"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "max depth")
}

func TestCheck_UsageErrors(t *testing.T) {
	cases := [][]string{
		{"check"},
		{"check", "-driver", "simdjson", fixture("base")},
		{"check", "-color", "sometimes", fixture("base")},
		{"check", "-lang", "fr", fixture("base")},
		{"check", "-unknown", fixture("base")},
		{"check", fixture("base"), "../../testdata/missing.avsc"},
	}
	for _, args := range cases {
		code, _, stderr := runCLI(t, args...)
		assert.Equal(t, exitUsage, code, "%v", args)
		assert.NotEmpty(t, stderr, "%v", args)
	}
}

func TestSuperset_Stdout(t *testing.T) {
	code, stdout, _ := runCLI(t, "superset", fixture("base"), fixture("good"))
	require.Equal(t, exitOK, code)
	s, err := avsc.Parse([]byte(stdout))
	require.NoError(t, err)
	r, ok := s.(*ac.Record)
	require.True(t, ok)
	assert.Len(t, r.Fields, 8)
	_, ok = r.Field("properField2")
	assert.True(t, ok)
}

func TestSuperset_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "superset.avsc")
	code, stdout, _ := runCLI(t, "superset", "-o", out, fixture("base"), fixture("good"))
	require.Equal(t, exitOK, code)
	assert.Empty(t, stdout)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	s, err := avsc.Parse(b)
	require.NoError(t, err)
	base, err := avsc.ParseFile(fixture("base"))
	require.NoError(t, err)
	// the superset stays compatible with every input
	assert.NoError(t, ac.Check([]ac.Schema{base, s}))
}

func TestSuperset_Incompatible(t *testing.T) {
	bad := fixture("addUnionType")
	code, stdout, _ := runCLI(t, "superset", fixture("base"), bad)
	assert.Equal(t, exitIncompatible, code)
	assert.True(t, strings.HasPrefix(stdout, "INCOMPATIBLE "+bad+": union_arity_mismatch"))
}

func TestSuperset_NameConflictIsReported(t *testing.T) {
	dir := t.TempDir()
	v1 := filepath.Join(dir, "v1.avsc")
	v2 := filepath.Join(dir, "v2.avsc")
	require.NoError(t, os.WriteFile(v1, []byte(`{"type":"record","name":"R","fields":[
		{"name":"a","type":{"type":"record","name":"Inner","fields":[{"name":"x","type":"int"}]},"default":{"x":0}}]}`), 0o644))
	require.NoError(t, os.WriteFile(v2, []byte(`{"type":"record","name":"R","fields":[
		{"name":"b","type":{"type":"record","name":"Inner","fields":[{"name":"x","type":"int"},{"name":"y","type":"int","default":0}]},"default":{"x":0}}]}`), 0o644))

	code, stdout, stderr := runCLI(t, "superset", v1, v2)
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "encode superset")
	assert.Contains(t, stderr, `"Inner"`)
}
