// Package hetu is the embedding façade: a host program constructs an
// Interpreter, registers externals against it, and evaluates source text or
// files.
package hetu

import (
	"fmt"

	"github.com/funvibe/hetu/internal/evaluator"
	"github.com/funvibe/hetu/internal/modules"
	"github.com/funvibe/hetu/internal/pipeline"
	"github.com/funvibe/hetu/pkg/ext"

	"io"
)

// Style selects which statements are legal at the top level of an evaluated
// unit.
type Style int

const (
	StyleLibrary Style = iota
	StyleFunction
)

// Options configures a new interpreter instance.
type Options struct {
	// WorkingDir anchors relative import paths.
	WorkingDir string
	// Debug enables verbose diagnostics in the embedding layer.
	Debug bool
	// FileReader overrides how source files are read; defaults to the
	// filesystem.
	FileReader func(path string) (string, error)
	// Out receives script output; defaults to stdout.
	Out io.Writer
}

// EvalOptions tunes one Eval or EvalFile call.
type EvalOptions struct {
	// FileName labels diagnostics for string evaluation.
	FileName string
	// Namespace evaluates into a named library namespace instead of globals.
	Namespace string
	// Style selects library or function parsing for Eval, which defaults to
	// function style. EvalFile always uses library style and ignores it.
	Style *Style
	// Invoke names a function to call after the unit is loaded; its result
	// becomes the call's result.
	Invoke string
	// Args are marshalled and passed to the invoked function.
	Args []interface{}
}

// InvokeOptions tunes one Invoke call.
type InvokeOptions struct {
	// ClassName qualifies the function as a static method of that class.
	ClassName string
	Args      []interface{}
}

// DefineOptions tunes one Define call.
type DefineOptions struct {
	Mutable bool
	// DeclaredType is accepted but not used by Define; annotations are not
	// enforced at runtime.
	DeclaredType string
	// TypeInference is accepted but not used by Define.
	TypeInference bool
}

// Interpreter is one self-contained embedding instance.
type Interpreter struct {
	core       *evaluator.Interpreter
	marshaller *Marshaller
	debug      bool
}

// New constructs an interpreter and loads the built-in extern library (the
// wrapper classes, print/typeof, and the term, Yaml and Database modules).
func New(opts *Options) (*Interpreter, error) {
	if opts == nil {
		opts = &Options{}
	}
	core := evaluator.New()
	core.Debug = opts.Debug
	if opts.Out != nil {
		core.Out = opts.Out
	}
	var reader modules.FileReader
	if opts.FileReader != nil {
		reader = opts.FileReader
	}
	core.SetLoader(modules.NewLoader(opts.WorkingDir, reader))

	if err := evaluator.LoadCoreLibrary(core); err != nil {
		return nil, err
	}
	return &Interpreter{
		core:       core,
		marshaller: NewMarshaller(),
		debug:      opts.Debug,
	}, nil
}

func (i *Interpreter) pipelineStyle(s *Style, fallback Style) pipeline.ParseStyle {
	style := fallback
	if s != nil {
		style = *s
	}
	if style == StyleLibrary {
		return pipeline.StyleLibrary
	}
	return pipeline.StyleFunction
}

func (i *Interpreter) targetNamespace(opts *EvalOptions) *evaluator.Namespace {
	if opts != nil && opts.Namespace != "" {
		return i.core.NamespaceFor(opts.Namespace)
	}
	return nil
}

// Eval evaluates source text and returns the last statement's value, or, when
// Invoke is set, that function's result after loading.
func (i *Interpreter) Eval(source string, opts *EvalOptions) (interface{}, error) {
	fileName := "<eval>"
	if opts != nil && opts.FileName != "" {
		fileName = opts.FileName
	}
	style := i.pipelineStyle(optStyle(opts), StyleFunction)

	result, err := i.core.EvalSource(source, fileName, style, i.targetNamespace(opts))
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Invoke != "" {
		return i.Invoke(opts.Invoke, &InvokeOptions{Args: opts.Args})
	}
	return i.marshaller.FromValue(result)
}

// EvalFile evaluates a file resolved against the working directory.
func (i *Interpreter) EvalFile(path string, opts *EvalOptions) (interface{}, error) {
	libName := ""
	if opts != nil {
		libName = opts.Namespace
	}
	result, err := i.core.EvalFile(path, libName, nil)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Invoke != "" {
		return i.Invoke(opts.Invoke, &InvokeOptions{Args: opts.Args})
	}
	return i.marshaller.FromValue(result)
}

// Invoke calls a script function by name, optionally qualified by a class
// name for static methods. Script errors are caught and reported as the
// returned error.
func (i *Interpreter) Invoke(funcName string, opts *InvokeOptions) (interface{}, error) {
	var className string
	var rawArgs []interface{}
	if opts != nil {
		className = opts.ClassName
		rawArgs = opts.Args
	}
	args := make([]ext.Object, len(rawArgs))
	for idx, raw := range rawArgs {
		obj, err := i.marshaller.ToValue(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx, err)
		}
		args[idx] = obj
	}
	result, err := i.core.Invoke(funcName, className, args)
	if err != nil {
		return nil, err
	}
	return i.marshaller.FromValue(result)
}

// Define declares a global in the interpreter's root namespace.
func (i *Interpreter) Define(name string, value interface{}, opts *DefineOptions) error {
	obj, err := i.marshaller.ToValue(value)
	if err != nil {
		return err
	}
	mutable := false
	if opts != nil {
		mutable = opts.Mutable
	}
	i.core.DefineGlobal(name, obj, mutable)
	return nil
}

// LoadExternalFunctions registers host callbacks by qualified name; external
// declarations of the same name bind to them at evaluation time.
func (i *Interpreter) LoadExternalFunctions(funcs map[string]ext.Function) error {
	for name, fn := range funcs {
		if fn == nil {
			return fmt.Errorf("external function '%s' is nil", name)
		}
		i.core.RegisterExternalFunction(name, fn)
	}
	return nil
}

// BindExternalNamespace registers a host namespace object backing an external
// class of the given name.
func (i *Interpreter) BindExternalNamespace(name string, ns ext.ExternalNamespace) error {
	if ns == nil {
		return fmt.Errorf("external namespace '%s' is nil", name)
	}
	i.core.BindExternalNamespace(name, ns)
	return nil
}

func optStyle(opts *EvalOptions) *Style {
	if opts == nil {
		return nil
	}
	return opts.Style
}
