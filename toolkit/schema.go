package toolkit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ggoodman/paypal-mcp-server-go/mcp"
	"github.com/invopop/jsonschema"
)

// argSpec pairs the advertised schema for an argument struct with a strict
// check of incoming arguments against it.
type argSpec struct {
	schema mcp.ToolInputSchema
	check  func(raw json.RawMessage) error
}

func argsOf[A any]() argSpec {
	schema := reflectInputSchema[A]()
	return argSpec{
		schema: schema,
		check: func(raw json.RawMessage) error {
			if err := strictDecode[A](raw); err != nil {
				return err
			}
			return checkRequired(schema.Required, raw)
		},
	}
}

// strictDecode decodes raw into A, rejecting members A does not declare and
// values of the wrong type.
func strictDecode[A any](raw json.RawMessage) error {
	var a A
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(&a)
}

// checkRequired reports the first required member that is absent or null.
func checkRequired(required []string, raw json.RawMessage) error {
	if len(required) == 0 {
		return nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return err
	}
	for _, name := range required {
		if v, ok := members[name]; !ok || string(v) == "null" {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	return nil
}

// reflectInputSchema reflects A with invopop/jsonschema and flattens the
// result into an mcp.ToolInputSchema. Fields without omitempty are required.
func reflectInputSchema[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(A))

	out := mcp.ToolInputSchema{Type: "object", Properties: map[string]mcp.SchemaProperty{}}
	if s == nil || s.Type != "object" {
		return out
	}
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			out.Properties[el.Key] = toProperty(el.Value)
		}
	}
	if len(s.Required) > 0 {
		out.Required = append(out.Required, s.Required...)
	}
	return out
}

func toProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{Type: s.Type, Description: s.Description}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}
	if s.Type == "array" && s.Items != nil {
		item := toProperty(s.Items)
		p.Items = &item
	}
	if s.Type == "object" && s.Properties != nil && s.Properties.Len() > 0 {
		p.Properties = make(map[string]mcp.SchemaProperty, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			p.Properties[el.Key] = toProperty(el.Value)
		}
	}
	return p
}
