// Package cli is the command-line entry point: compile a program, then run
// it against a stream of events.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eventflow/remap/internal/config"
	"github.com/eventflow/remap/internal/evaluator"
	"github.com/eventflow/remap/internal/pipeline"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/value"
)

const usage = `usage: remap <program-file> [event-files...]
       remap -e '<program>' [event-files...]

Events are read as JSON lines from stdin when no event files are given.
Event files may be JSON (streamed values) or YAML (streamed documents).
Mutated events are written as JSON lines to stdout; aborted events are
reported on stderr and processing continues.`

// Run drives one invocation. It never exits the process itself; the caller
// passes the returned code to os.Exit.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	source, eventFiles, code, done := parseArgs(args, stdout, stderr)
	if done {
		return code
	}

	program, diags := pipeline.Compile(source, registry.New())
	if !diags.Empty() {
		reportDiagnostics(diags, stderr)
		return config.ExitCompileError
	}

	if err := processEvents(program, eventFiles, stdin, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "remap: %v\n", err)
		return config.ExitCompileError
	}
	return config.ExitOK
}

func parseArgs(args []string, stdout, stderr io.Writer) (source string, eventFiles []string, code int, done bool) {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return "", nil, config.ExitUsage, true
	}

	switch args[0] {
	case "--version":
		fmt.Fprintf(stdout, "remap %s\n", config.Version)
		return "", nil, config.ExitOK, true
	case "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return "", nil, config.ExitOK, true
	case "-e":
		if len(args) < 2 {
			fmt.Fprintln(stderr, usage)
			return "", nil, config.ExitUsage, true
		}
		return args[1], args[2:], 0, false
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "remap: cannot read program: %v\n", err)
		return "", nil, config.ExitUsage, true
	}
	return string(data), args[1:], 0, false
}

func processEvents(program *pipeline.Program, files []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(files) == 0 {
		return runStream(program, json.NewDecoder(stdin).Decode, "stdin", stdout, stderr)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		decode := json.NewDecoder(f).Decode
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			decode = yaml.NewDecoder(f).Decode
		}
		err = runStream(program, decode, name, stdout, stderr)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// runStream feeds decoded events through the shared program one at a time.
// An aborted event is reported and skipped; the stream continues.
func runStream(program *pipeline.Program, decode func(interface{}) error, name string, stdout, stderr io.Writer) error {
	out := json.NewEncoder(stdout)
	for n := 1; ; n++ {
		var raw interface{}
		if err := decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%s: event %d: %w", name, n, err)
		}

		event, err := value.FromInterface(raw)
		if err != nil {
			return fmt.Errorf("%s: event %d: %w", name, n, err)
		}

		mutated, _, err := program.Run(event)
		if err != nil {
			if evaluator.IsAbort(err) {
				fmt.Fprintf(stderr, "%s: event %d: %v\n", name, n, err)
				continue
			}
			return fmt.Errorf("%s: event %d: %w", name, n, err)
		}

		if err := out.Encode(value.ToInterface(mutated)); err != nil {
			return err
		}
	}
}
