package hetu

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hetu/internal/evaluator"
)

// Marshaller handles conversion between Go and script values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a script object.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Object, error) {
	if val == nil {
		return evaluator.NULL, nil
	}
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Number{Value: float64(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &evaluator.Number{Value: float64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Number{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		elements := make([]evaluator.Object, v.Len())
		for i := 0; i < v.Len(); i++ {
			el, err := m.ToValue(v.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elements[i] = el
		}
		return &evaluator.List{Elements: elements}, nil
	case reflect.Map:
		out := &evaluator.Map{}
		iter := v.MapRange()
		for iter.Next() {
			key, err := m.ToValue(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			value, err := m.ToValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out.Set(key, value)
		}
		return out, nil
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return evaluator.NULL, nil
		}
		return &evaluator.HostObject{Value: val}, nil
	}
	return nil, fmt.Errorf("cannot convert %T to a script value", val)
}

// FromValue converts a script object back to a plain Go value. Numbers come
// back as float64, lists as []interface{}, maps as map[interface{}]interface{}
// preserving nothing but content; functions, classes and instances surface
// as-is for round-tripping through the host.
func (m *Marshaller) FromValue(obj evaluator.Object) (interface{}, error) {
	switch v := obj.(type) {
	case nil, *evaluator.Null:
		return nil, nil
	case *evaluator.Boolean:
		return v.Value, nil
	case *evaluator.Number:
		return v.Value, nil
	case *evaluator.String:
		return v.Value, nil
	case *evaluator.List:
		out := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			converted, err := m.FromValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case *evaluator.Map:
		out := make(map[interface{}]interface{}, len(v.Pairs))
		for _, pair := range v.Pairs {
			key, err := m.FromValue(pair.Key)
			if err != nil {
				return nil, err
			}
			value, err := m.FromValue(pair.Value)
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil
	case *evaluator.HostObject:
		return v.Value, nil
	}
	return obj, nil
}
