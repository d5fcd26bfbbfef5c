package evaluator

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/hetu/internal/pipeline"
)

// termLibSource exposes terminal helpers to scripts as a static extern class.
const termLibSource = `
external class term {
  static fun isTTY(): bool
  static fun red(text: String): String
  static fun green(text: String): String
  static fun yellow(text: String): String
  static fun bold(text: String): String
}
`

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
)

// StdoutIsTTY reports whether stdout is an interactive terminal.
func StdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// RegisterTermModule installs the term natives and evaluates the extern
// declarations. Color helpers are no-ops when stdout is not a terminal.
func RegisterTermModule(i *Interpreter) error {
	i.RegisterExternalFunction("term.isTTY", func(receiver Object, args []Object, named map[string]Object) Object {
		return nativeBoolToBooleanObject(StdoutIsTTY())
	})
	i.RegisterExternalFunction("term.red", colorNative(ansiRed))
	i.RegisterExternalFunction("term.green", colorNative(ansiGreen))
	i.RegisterExternalFunction("term.yellow", colorNative(ansiYellow))
	i.RegisterExternalFunction("term.bold", colorNative(ansiBold))

	_, err := i.EvalSource(termLibSource, "<term>", pipeline.StyleLibrary, nil)
	return err
}

func colorNative(code string) NativeFunction {
	return func(receiver Object, args []Object, named map[string]Object) Object {
		if len(args) != 1 {
			return newError("expected one argument")
		}
		s, ok := args[0].(*String)
		if !ok {
			return newError("expected a String, got %s", runtimeTypeName(args[0]))
		}
		if !StdoutIsTTY() {
			return s
		}
		return &String{Value: code + s.Value + ansiReset}
	}
}
