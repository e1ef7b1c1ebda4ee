package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/config"
)

func invoke(t *testing.T, args []string, stdin string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInlineProgram(t *testing.T) {
	code, stdout, stderr := invoke(t,
		[]string{"-e", `.tag = "seen"`},
		`{"msg":"a"}`+"\n"+`{"msg":"b"}`)
	require.Equal(t, config.ExitOK, code, "stderr: %s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		assert.Equal(t, "seen", ev["tag"])
	}
}

func TestCompileErrorExit(t *testing.T) {
	code, _, stderr := invoke(t, []string{"-e", "to_int(.x)"}, "")
	assert.Equal(t, config.ExitCompileError, code)
	assert.Contains(t, stderr, "error")
}

func TestUsageExit(t *testing.T) {
	code, _, stderr := invoke(t, nil, "")
	assert.Equal(t, config.ExitUsage, code)
	assert.Contains(t, stderr, "usage:")

	code, _, _ = invoke(t, []string{"-e"}, "")
	assert.Equal(t, config.ExitUsage, code)
}

func TestVersionAndHelp(t *testing.T) {
	code, stdout, _ := invoke(t, []string{"--version"}, "")
	assert.Equal(t, config.ExitOK, code)
	assert.Contains(t, stdout, config.Version)

	code, stdout, _ = invoke(t, []string{"--help"}, "")
	assert.Equal(t, config.ExitOK, code)
	assert.Contains(t, stdout, "usage:")
}

func TestAbortedEventSkipsAndContinues(t *testing.T) {
	code, stdout, stderr := invoke(t,
		[]string{"-e", `.n = to_int!(.x)`},
		`{"x":"nope"}`+"\n"+`{"x":"5"}`)
	require.Equal(t, config.ExitOK, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1, "only the surviving event is emitted")
	assert.Contains(t, lines[0], `"n"`)
	assert.Contains(t, stderr, "event 1")
}

func TestProgramFileAndYAMLEvents(t *testing.T) {
	dir := t.TempDir()
	progFile := filepath.Join(dir, "prog.remap")
	require.NoError(t, os.WriteFile(progFile, []byte(`.source = "yaml"`), 0o644))

	eventFile := filepath.Join(dir, "events.yaml")
	require.NoError(t, os.WriteFile(eventFile, []byte("msg: one\n---\nmsg: two\n"), 0o644))

	code, stdout, stderr := invoke(t, []string{progFile, eventFile}, "")
	require.Equal(t, config.ExitOK, code, "stderr: %s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"source":"yaml"`)
}

func TestMissingProgramFile(t *testing.T) {
	code, _, stderr := invoke(t, []string{"/nonexistent/prog.remap"}, "")
	assert.Equal(t, config.ExitUsage, code)
	assert.Contains(t, stderr, "cannot read program")
}

func TestMalformedEventFailsTheRun(t *testing.T) {
	code, _, stderr := invoke(t, []string{"-e", ".a = 1"}, "{not json")
	assert.Equal(t, config.ExitCompileError, code)
	assert.Contains(t, stderr, "event 1")
}
