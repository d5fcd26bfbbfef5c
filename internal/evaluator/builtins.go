package evaluator

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/hetu/internal/pipeline"
)

// coreLibSource declares the built-in surface in script form: the global
// external functions and the wrapper classes whose members bind to the
// host-callable function table.
const coreLibSource = `
external fun print
external fun typeof
external fun random
external fun abs
external fun floor
external fun ceil
external fun sqrt

external class Object {}

external class num {
  static fun parse(value: String): num
  fun toString(): String
}

external class bool {
  fun toString(): String
}

external class String {
  get length: num
  fun toString(): String
  fun indexOf(other: String): num
  fun substring(startIndex: num, [endIndex: num]): String
  fun split(pattern: String): List
}

external class List {
  get length: num
  get first
  get last
  fun toString(): String
  fun add(... items)
  fun contains(item): bool
  fun indexOf(item): num
  fun removeAt(index: num)
  fun clear
}

external class Map {
  get length: num
  get keys: List
  get values: List
  fun toString(): String
  fun containsKey(key): bool
  fun remove(key)
  fun clear
}
`

// LoadCoreLibrary registers the core native callbacks and evaluates the core
// library source into globals. It must run before any user code that touches
// literals or built-in classes.
func LoadCoreLibrary(i *Interpreter) error {
	registerCoreFunctions(i)
	registerNumberNatives(i)
	registerStringNatives(i)
	registerListNatives(i)
	registerMapNatives(i)
	if _, err := i.EvalSource(coreLibSource, "<core>", pipeline.StyleLibrary, nil); err != nil {
		return fmt.Errorf("core library: %w", err)
	}
	if err := RegisterTermModule(i); err != nil {
		return fmt.Errorf("term module: %w", err)
	}
	if err := RegisterYamlModule(i); err != nil {
		return fmt.Errorf("yaml module: %w", err)
	}
	if err := RegisterDatabaseModule(i); err != nil {
		return fmt.Errorf("database module: %w", err)
	}
	return nil
}

// wrapped returns the underlying primitive of a wrapper receiver.
func wrapped(receiver Object) Object {
	if inst, ok := receiver.(*Instance); ok && inst.Wrapped != nil {
		return inst.Wrapped
	}
	return receiver
}

func registerCoreFunctions(i *Interpreter) {
	i.RegisterExternalFunction("print", func(receiver Object, args []Object, named map[string]Object) Object {
		parts := make([]string, len(args))
		for idx, arg := range args {
			parts[idx] = arg.Inspect()
		}
		fmt.Fprintln(i.Out, strings.Join(parts, " "))
		return NULL
	})
	i.RegisterExternalFunction("typeof", func(receiver Object, args []Object, named map[string]Object) Object {
		if len(args) != 1 {
			return newError("typeof expects one argument")
		}
		return &String{Value: runtimeTypeName(args[0])}
	})
	i.RegisterExternalFunction("random", func(receiver Object, args []Object, named map[string]Object) Object {
		return &Number{Value: rand.Float64()}
	})
	i.RegisterExternalFunction("abs", numberNative("abs", math.Abs))
	i.RegisterExternalFunction("floor", numberNative("floor", math.Floor))
	i.RegisterExternalFunction("ceil", numberNative("ceil", math.Ceil))
	i.RegisterExternalFunction("sqrt", func(receiver Object, args []Object, named map[string]Object) Object {
		n, err := oneNumberArg("sqrt", args)
		if err != nil {
			return err
		}
		if n < 0 {
			return newError("sqrt of a negative number")
		}
		return &Number{Value: math.Sqrt(n)}
	})
}

func numberNative(name string, fn func(float64) float64) NativeFunction {
	return func(receiver Object, args []Object, named map[string]Object) Object {
		n, err := oneNumberArg(name, args)
		if err != nil {
			return err
		}
		return &Number{Value: fn(n)}
	}
}

func oneNumberArg(name string, args []Object) (float64, *Error) {
	if len(args) != 1 {
		return 0, newError("%s expects one argument", name)
	}
	n, ok := args[0].(*Number)
	if !ok {
		return 0, newError("%s expects a number, got %s", name, runtimeTypeName(args[0]))
	}
	return n.Value, nil
}

func registerNumberNatives(i *Interpreter) {
	i.RegisterExternalFunction("num.parse", func(receiver Object, args []Object, named map[string]Object) Object {
		if len(args) != 1 {
			return newError("num.parse expects one argument")
		}
		s, ok := args[0].(*String)
		if !ok {
			return newError("num.parse expects a String, got %s", runtimeTypeName(args[0]))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
		if err != nil {
			return newError("cannot parse '%s' as num", s.Value)
		}
		return &Number{Value: v}
	})
	i.RegisterExternalFunction("num.toString", func(receiver Object, args []Object, named map[string]Object) Object {
		return &String{Value: wrapped(receiver).Inspect()}
	})
	i.RegisterExternalFunction("bool.toString", func(receiver Object, args []Object, named map[string]Object) Object {
		return &String{Value: wrapped(receiver).Inspect()}
	})
}

func registerStringNatives(i *Interpreter) {
	recvString := func(receiver Object) (*String, *Error) {
		s, ok := wrapped(receiver).(*String)
		if !ok {
			return nil, newError("receiver is not a String")
		}
		return s, nil
	}

	i.RegisterExternalFunction("String.length", func(receiver Object, args []Object, named map[string]Object) Object {
		s, err := recvString(receiver)
		if err != nil {
			return err
		}
		return &Number{Value: float64(utf8.RuneCountInString(s.Value))}
	})
	i.RegisterExternalFunction("String.toString", func(receiver Object, args []Object, named map[string]Object) Object {
		s, err := recvString(receiver)
		if err != nil {
			return err
		}
		return &String{Value: s.Value}
	})
	i.RegisterExternalFunction("String.indexOf", func(receiver Object, args []Object, named map[string]Object) Object {
		s, err := recvString(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("indexOf expects one argument")
		}
		other, ok := args[0].(*String)
		if !ok {
			return newError("indexOf expects a String")
		}
		return &Number{Value: float64(strings.Index(s.Value, other.Value))}
	})
	i.RegisterExternalFunction("String.substring", func(receiver Object, args []Object, named map[string]Object) Object {
		s, err := recvString(receiver)
		if err != nil {
			return err
		}
		if len(args) < 1 {
			return newError("substring expects a start index")
		}
		runes := []rune(s.Value)
		start, ok := listIndexArg(args[0], len(runes)+1)
		if !ok {
			return newError("substring start index out of range")
		}
		end := len(runes)
		if len(args) > 1 {
			end, ok = listIndexArg(args[1], len(runes)+1)
			if !ok || end < start {
				return newError("substring end index out of range")
			}
		}
		return &String{Value: string(runes[start:end])}
	})
	i.RegisterExternalFunction("String.split", func(receiver Object, args []Object, named map[string]Object) Object {
		s, err := recvString(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("split expects one argument")
		}
		sep, ok := args[0].(*String)
		if !ok {
			return newError("split expects a String")
		}
		parts := strings.Split(s.Value, sep.Value)
		elements := make([]Object, len(parts))
		for idx, part := range parts {
			elements[idx] = &String{Value: part}
		}
		return &List{Elements: elements}
	})
}

// listIndexArg validates a non-negative integer argument below limit.
func listIndexArg(arg Object, limit int) (int, bool) {
	n, ok := arg.(*Number)
	if !ok {
		return 0, false
	}
	idx := int(n.Value)
	if float64(idx) != n.Value || idx < 0 || idx >= limit {
		return 0, false
	}
	return idx, true
}

func registerListNatives(i *Interpreter) {
	recvList := func(receiver Object) (*List, *Error) {
		l, ok := wrapped(receiver).(*List)
		if !ok {
			return nil, newError("receiver is not a List")
		}
		return l, nil
	}

	i.RegisterExternalFunction("List.length", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		return &Number{Value: float64(len(l.Elements))}
	})
	i.RegisterExternalFunction("List.first", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		if len(l.Elements) == 0 {
			return NULL
		}
		return l.Elements[0]
	})
	i.RegisterExternalFunction("List.last", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		if len(l.Elements) == 0 {
			return NULL
		}
		return l.Elements[len(l.Elements)-1]
	})
	i.RegisterExternalFunction("List.toString", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		return &String{Value: l.Inspect()}
	})
	i.RegisterExternalFunction("List.add", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		l.Elements = append(l.Elements, args...)
		return NULL
	})
	i.RegisterExternalFunction("List.contains", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("contains expects one argument")
		}
		for _, el := range l.Elements {
			if objectsEqual(el, args[0]) {
				return TRUE
			}
		}
		return FALSE
	})
	i.RegisterExternalFunction("List.indexOf", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("indexOf expects one argument")
		}
		for idx, el := range l.Elements {
			if objectsEqual(el, args[0]) {
				return &Number{Value: float64(idx)}
			}
		}
		return &Number{Value: -1}
	})
	i.RegisterExternalFunction("List.removeAt", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("removeAt expects one argument")
		}
		idx, ok := listIndexArg(args[0], len(l.Elements))
		if !ok {
			return newError("list index out of range")
		}
		removed := l.Elements[idx]
		l.Elements = append(l.Elements[:idx], l.Elements[idx+1:]...)
		return removed
	})
	i.RegisterExternalFunction("List.clear", func(receiver Object, args []Object, named map[string]Object) Object {
		l, err := recvList(receiver)
		if err != nil {
			return err
		}
		l.Elements = l.Elements[:0]
		return NULL
	})
}

func registerMapNatives(i *Interpreter) {
	recvMap := func(receiver Object) (*Map, *Error) {
		m, ok := wrapped(receiver).(*Map)
		if !ok {
			return nil, newError("receiver is not a Map")
		}
		return m, nil
	}

	i.RegisterExternalFunction("Map.length", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		return &Number{Value: float64(m.Len())}
	})
	i.RegisterExternalFunction("Map.keys", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		keys := make([]Object, len(m.Pairs))
		for idx, pair := range m.Pairs {
			keys[idx] = pair.Key
		}
		return &List{Elements: keys}
	})
	i.RegisterExternalFunction("Map.values", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		values := make([]Object, len(m.Pairs))
		for idx, pair := range m.Pairs {
			values[idx] = pair.Value
		}
		return &List{Elements: values}
	})
	i.RegisterExternalFunction("Map.toString", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		return &String{Value: m.Inspect()}
	})
	i.RegisterExternalFunction("Map.containsKey", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("containsKey expects one argument")
		}
		_, found := m.Get(args[0])
		return nativeBoolToBooleanObject(found)
	})
	i.RegisterExternalFunction("Map.remove", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		if len(args) != 1 {
			return newError("remove expects one argument")
		}
		return nativeBoolToBooleanObject(m.Remove(args[0]))
	})
	i.RegisterExternalFunction("Map.clear", func(receiver Object, args []Object, named map[string]Object) Object {
		m, err := recvMap(receiver)
		if err != nil {
			return err
		}
		m.Pairs = m.Pairs[:0]
		return NULL
	})
}
