package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// TemplateField is one entry of an extraction template.
type TemplateField struct {
	Name        string
	Description string
}

// Template is an ordered field-name-to-description mapping guiding
// structured extraction. Order is preserved from the source document so the
// extraction instruction lists fields the way the template author wrote them.
type Template struct {
	fields []TemplateField
	keys   map[string]struct{}
}

// NewTemplate builds a Template from ordered fields.
func NewTemplate(fields []TemplateField) Template {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		keys[f.Name] = struct{}{}
	}
	return Template{fields: fields, keys: keys}
}

// LoadTemplate reads a template JSON file: a flat object whose keys are
// field names and whose values are description strings.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template %s: %w", path, err)
	}
	tmpl, err := ParseTemplate(data)
	if err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	return tmpl, nil
}

// ParseTemplate decodes template JSON, preserving field order. json.Unmarshal
// into a map would lose it, so the object is walked token by token.
func ParseTemplate(data []byte) (Template, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Template{}, fmt.Errorf("template must be a JSON object")
	}

	var fields []TemplateField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Template{}, fmt.Errorf("decode template key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Template{}, fmt.Errorf("template key is not a string")
		}
		var desc string
		if err := dec.Decode(&desc); err != nil {
			return Template{}, fmt.Errorf("template field %q: description must be a string: %w", key, err)
		}
		fields = append(fields, TemplateField{Name: key, Description: desc})
	}
	if len(fields) == 0 {
		return Template{}, fmt.Errorf("template has no fields")
	}
	return NewTemplate(fields), nil
}

// Fields returns the ordered fields.
func (t Template) Fields() []TemplateField {
	return t.fields
}

// Len returns the number of fields.
func (t Template) Len() int {
	return len(t.fields)
}

// HasKey reports whether name is a template field.
func (t Template) HasKey(name string) bool {
	_, ok := t.keys[name]
	return ok
}

// Intersects reports whether any of the given keys is a template field.
// Reserved metadata keys (leading underscore) never count.
func (t Template) Intersects(keys []string) bool {
	for _, k := range keys {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		if t.HasKey(k) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the template as a JSON object in field order.
func (t Template) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		desc, err := json.Marshal(f.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(desc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a template from a JSON object, preserving order.
func (t *Template) UnmarshalJSON(data []byte) error {
	tmpl, err := ParseTemplate(data)
	if err != nil {
		return err
	}
	*t = tmpl
	return nil
}
