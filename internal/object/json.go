package object

import (
	"encoding/json"
	"fmt"
)

// FromJSON decodes a JSON document into a runtime value. Objects become
// maps with string keys, arrays become lists, numbers become Number.
func FromJSON(data []byte) (Object, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return fromHostValue(decoded)
}

func fromHostValue(v interface{}) (Object, error) {
	switch v := v.(type) {
	case nil:
		return NIL, nil
	case bool:
		if v {
			return TRUE, nil
		}
		return FALSE, nil
	case float64:
		return &Number{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []interface{}:
		elements := make([]Object, 0, len(v))
		for _, elem := range v {
			obj, err := fromHostValue(elem)
			if err != nil {
				return nil, err
			}
			elements = append(elements, obj)
		}
		return &List{Elements: elements}, nil
	case map[string]interface{}:
		m := &Map{Pairs: map[MapKey]MapPair{}}
		for key, val := range v {
			obj, err := fromHostValue(val)
			if err != nil {
				return nil, err
			}
			m.Put(&String{Value: key}, obj)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value: %T", v)
	}
}

// ToJSON encodes a runtime value as a JSON document. Map keys must be
// strings; functions and signals cannot be encoded.
func ToJSON(obj Object) ([]byte, error) {
	host, err := toHostValue(obj)
	if err != nil {
		return nil, err
	}
	return json.Marshal(host)
}

func toHostValue(obj Object) (interface{}, error) {
	switch obj := obj.(type) {
	case *Nil:
		return nil, nil
	case *Boolean:
		return obj.Value, nil
	case *Number:
		return obj.Value, nil
	case *String:
		return obj.Value, nil
	case *List:
		elements := make([]interface{}, 0, len(obj.Elements))
		for _, elem := range obj.Elements {
			host, err := toHostValue(elem)
			if err != nil {
				return nil, err
			}
			elements = append(elements, host)
		}
		return elements, nil
	case *Map:
		m := make(map[string]interface{}, len(obj.Pairs))
		for _, pair := range obj.Pairs {
			key, ok := pair.Key.(*String)
			if !ok {
				return nil, fmt.Errorf("JSON object keys must be strings, got %s", pair.Key.Type())
			}
			host, err := toHostValue(pair.Value)
			if err != nil {
				return nil, err
			}
			m[key.Value] = host
		}
		return m, nil
	default:
		return nil, fmt.Errorf("cannot encode %s as JSON", obj.Type())
	}
}
