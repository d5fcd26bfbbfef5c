package evaluator

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/hetu/internal/pipeline"
)

// yamlLibSource exposes YAML decode/encode to scripts as a static extern
// class.
const yamlLibSource = `
external class Yaml {
  static fun parse(source: String)
  static fun stringify(value): String
}
`

// RegisterYamlModule installs the Yaml natives and evaluates the extern
// declarations.
func RegisterYamlModule(i *Interpreter) error {
	i.RegisterExternalFunction("Yaml.parse", func(receiver Object, args []Object, named map[string]Object) Object {
		if len(args) != 1 {
			return newError("Yaml.parse expects one argument")
		}
		s, ok := args[0].(*String)
		if !ok {
			return newError("Yaml.parse expects a String, got %s", runtimeTypeName(args[0]))
		}
		var data interface{}
		if err := yaml.Unmarshal([]byte(s.Value), &data); err != nil {
			return newError("YAML parse error: %v", err)
		}
		obj, err := inferFromYaml(data)
		if err != nil {
			return newError("%v", err)
		}
		return obj
	})
	i.RegisterExternalFunction("Yaml.stringify", func(receiver Object, args []Object, named map[string]Object) Object {
		if len(args) != 1 {
			return newError("Yaml.stringify expects one argument")
		}
		data, err := yamlFromObject(args[0])
		if err != nil {
			return newError("%v", err)
		}
		out, marshalErr := yaml.Marshal(data)
		if marshalErr != nil {
			return newError("YAML encode error: %v", marshalErr)
		}
		return &String{Value: string(out)}
	})

	_, err := i.EvalSource(yamlLibSource, "<yaml>", pipeline.StyleLibrary, nil)
	return err
}

// inferFromYaml converts Go values (from yaml.Unmarshal) to script objects.
// Mappings become Maps, sequences become Lists, scalars become
// num/bool/String/null as appropriate.
func inferFromYaml(data interface{}) (Object, error) {
	switch v := data.(type) {
	case nil:
		return NULL, nil
	case bool:
		return nativeBoolToBooleanObject(v), nil
	case int:
		return &Number{Value: float64(v)}, nil
	case int64:
		return &Number{Value: float64(v)}, nil
	case float64:
		return &Number{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []interface{}:
		elements := make([]Object, len(v))
		for i, item := range v {
			obj, err := inferFromYaml(item)
			if err != nil {
				return nil, err
			}
			elements[i] = obj
		}
		return &List{Elements: elements}, nil
	case map[string]interface{}:
		m := &Map{}
		for key, value := range v {
			obj, err := inferFromYaml(value)
			if err != nil {
				return nil, err
			}
			m.Set(&String{Value: key}, obj)
		}
		return m, nil
	case map[interface{}]interface{}:
		m := &Map{}
		for key, value := range v {
			obj, err := inferFromYaml(value)
			if err != nil {
				return nil, err
			}
			m.Set(&String{Value: fmt.Sprintf("%v", key)}, obj)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported YAML value %T", data)
}

// yamlFromObject converts a script object to a Go value for yaml.Marshal.
func yamlFromObject(obj Object) (interface{}, error) {
	switch v := subscriptTarget(obj).(type) {
	case *Null:
		return nil, nil
	case *Boolean:
		return v.Value, nil
	case *Number:
		if v.Value == float64(int64(v.Value)) {
			return int64(v.Value), nil
		}
		return v.Value, nil
	case *String:
		return v.Value, nil
	case *List:
		out := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			converted, err := yamlFromObject(el)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case *Map:
		out := make(map[string]interface{}, len(v.Pairs))
		for _, pair := range v.Pairs {
			converted, err := yamlFromObject(pair.Value)
			if err != nil {
				return nil, err
			}
			out[pair.Key.Inspect()] = converted
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot encode %s as YAML", runtimeTypeName(obj))
}
