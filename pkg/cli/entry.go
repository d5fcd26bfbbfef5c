package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/evaluator"
	hetu "github.com/funvibe/hetu/pkg/embed"
)

const Version = "0.1.0"

// ProjectConfigFile is read from the working directory when present.
const ProjectConfigFile = "hetu.yaml"

// ProjectConfig is the optional per-project configuration.
type ProjectConfig struct {
	// WorkingDir anchors relative imports; defaults to the script's directory.
	WorkingDir string `yaml:"working_dir,omitempty"`
	// Debug enables verbose diagnostics.
	Debug bool `yaml:"debug,omitempty"`
}

func loadProjectConfig(dir string) (*ProjectConfig, error) {
	content, err := os.ReadFile(filepath.Join(dir, ProjectConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, err
	}
	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ProjectConfigFile, err)
	}
	return cfg, nil
}

// Run is the CLI entry point: run a script file (invoking main when present),
// evaluate a -e string, or start a REPL.
func Run(args []string, stdout, stderr io.Writer) int {
	var evalSource string
	var debug bool
	var scriptPath string
	var scriptArgs []string

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--version":
			fmt.Fprintf(stdout, "hetu %s\n", Version)
			return 0
		case arg == "-h" || arg == "--help":
			printUsage(stdout)
			return 0
		case arg == "-d" || arg == "--debug":
			debug = true
		case arg == "-e":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "error: -e requires an argument")
				return 1
			}
			i++
			evalSource = args[i]
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(stderr, "error: unknown flag '%s'\n", arg)
			printUsage(stderr)
			return 1
		default:
			scriptPath = arg
			scriptArgs = args[i+1:]
			i = len(args)
		}
	}
	_ = scriptArgs

	if evalSource != "" {
		return runEval(evalSource, debug, stdout, stderr)
	}
	if scriptPath != "" {
		return runFile(scriptPath, debug, stdout, stderr)
	}
	return runREPL(debug, stdout, stderr)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: hetu [flags] [script"+config.SourceFileExt+" [args]]")
	fmt.Fprintln(out, "  -e <source>   evaluate a source string")
	fmt.Fprintln(out, "  -d, --debug   verbose diagnostics")
	fmt.Fprintln(out, "  -v            print version")
	fmt.Fprintln(out, "With no script, starts a REPL.")
}

func newInterpreter(workingDir string, debug bool, stdout io.Writer) (*hetu.Interpreter, error) {
	cfg, err := loadProjectConfig(workingDir)
	if err != nil {
		return nil, err
	}
	if cfg.WorkingDir != "" {
		if filepath.IsAbs(cfg.WorkingDir) {
			workingDir = cfg.WorkingDir
		} else {
			workingDir = filepath.Join(workingDir, cfg.WorkingDir)
		}
	}
	return hetu.New(&hetu.Options{
		WorkingDir: workingDir,
		Debug:      debug || cfg.Debug,
		Out:        stdout,
	})
}

func runEval(source string, debug bool, stdout, stderr io.Writer) int {
	interp, err := newInterpreter(".", debug, stdout)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	result, err := interp.Eval(source, nil)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	if result != nil {
		fmt.Fprintln(stdout, formatResult(result))
	}
	return 0
}

func runFile(path string, debug bool, stdout, stderr io.Writer) int {
	abs, err := filepath.Abs(path)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	interp, err := newInterpreter(filepath.Dir(abs), debug, stdout)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	if _, err := interp.EvalFile(abs, nil); err != nil {
		reportError(stderr, err)
		return 1
	}
	// Invoke main when the script declares one.
	if _, err := interp.Invoke("main", nil); err != nil {
		if !strings.Contains(err.Error(), "undefined function 'main'") {
			reportError(stderr, err)
			return 1
		}
	}
	return 0
}

func runREPL(debug bool, stdout, stderr io.Writer) int {
	interp, err := newInterpreter(".", debug, stdout)
	if err != nil {
		reportError(stderr, err)
		return 1
	}

	colored := evaluator.StdoutIsTTY()
	prompt := ">>> "
	if colored {
		prompt = "\x1b[32m>>> \x1b[0m"
	}

	fmt.Fprintf(stdout, "hetu %s (type 'exit' to quit)\n", Version)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(stdout, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(stdout)
			return 0
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return 0
		}
		result, err := interp.Eval(line, nil)
		if err != nil {
			reportError(stderr, err)
			continue
		}
		if result != nil {
			fmt.Fprintln(stdout, formatResult(result))
		}
	}
}

func formatResult(result interface{}) string {
	if obj, ok := result.(evaluator.Object); ok {
		return obj.Inspect()
	}
	return fmt.Sprintf("%v", result)
}

func reportError(stderr io.Writer, err error) {
	msg := err.Error()
	if evaluator.StdoutIsTTY() {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(stderr, msg)
}
