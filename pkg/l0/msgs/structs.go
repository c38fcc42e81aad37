package msgs

import (
	"fmt"
	"reflect"
	"strings"

	structpb "github.com/golang/protobuf/ptypes/struct"
)

// TypeName returns the schema name of a message.
func TypeName(msg Message) string {
	t := reflect.TypeOf(msg)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ToStruct converts the fields of a message into a protobuf Struct.
// Field names follow the json tags.
func ToStruct(msg Message) (*structpb.Struct, error) {
	v := reflect.Indirect(reflect.ValueOf(msg))
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported message %T", msg)
	}
	return structOf(v)
}

func structOf(v reflect.Value) (*structpb.Struct, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	t := v.Type()
	for n := 0; n < t.NumField(); n++ {
		f := t.Field(n)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			name = strings.Split(tag, ",")[0]
		}
		val, err := valueOf(v.Field(n))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v", t.Name(), f.Name, err)
		}
		s.Fields[name] = val
	}
	return s, nil
}

func valueOf(v reflect.Value) (*structpb.Value, error) {
	switch v.Kind() {
	case reflect.Bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v.Bool()}}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberValue(float64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numberValue(float64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return numberValue(v.Float()), nil
	case reflect.String:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v.String()}}, nil
	case reflect.Struct:
		s, err := structOf(v)
		if err != nil {
			return nil, err
		}
		return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: s}}, nil
	case reflect.Slice, reflect.Array:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, v.Len())}
		for n := 0; n < v.Len(); n++ {
			item, err := valueOf(v.Index(n))
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, item)
		}
		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: list}}, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", v.Kind())
}

func numberValue(f float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: f}}
}
