package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/aretw0/stepwise/pkg/wizard"
	"gopkg.in/yaml.v3"
)

// Load reads a definition file. Files ending in .json are decoded as JSON, anything
// else as YAML.
func Load(path string) (*wizard.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard definition: %w", err)
	}

	var f File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Build(f)
}

// Parse decodes a YAML document.
func Parse(data []byte) (*wizard.Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse wizard definition: %w", err)
	}
	return Build(f)
}

// Build turns a decoded File into a Registry.
func Build(f File) (*wizard.Registry, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("%w: wizard has no name", domain.ErrInvalidDefinition)
	}

	declared := make(map[string]bool)
	for _, s := range f.Steps {
		for _, a := range s.Attributes {
			declared[a.Name] = true
		}
	}

	defs := make([]*step.Definition, 0, len(f.Steps))
	for i, s := range f.Steps {
		def, err := buildStep(s)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d (%q): %v", domain.ErrInvalidDefinition, i+1, s.Key, err)
		}
		if s.SkipIf != nil && !declared[s.SkipIf.Attribute] {
			return nil, fmt.Errorf("%w: step %q: skip_if refers to undeclared attribute %q",
				domain.ErrInvalidDefinition, s.Key, s.SkipIf.Attribute)
		}
		defs = append(defs, def)
	}
	return wizard.Define(f.Name, defs...)
}

func buildStep(s StepSpec) (*step.Definition, error) {
	def := &step.Definition{
		Key:                     s.Key,
		Title:                   s.Title,
		ContainsPersonalDetails: s.Personal,
	}
	for _, a := range s.Attributes {
		field, err := buildField(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		def.Attributes = append(def.Attributes, field)
	}
	if s.SkipIf != nil {
		if err := s.SkipIf.check(); err != nil {
			return nil, err
		}
		def.Skip = s.SkipIf.predicate()
	}
	return def, nil
}

func buildField(a AttributeSpec) (schema.Field, error) {
	typ, err := schema.ParseType(a.Type)
	if err != nil {
		return schema.Field{}, err
	}
	f := schema.Field{Name: a.Name, Type: typ}

	if a.Default != nil {
		def, err := typ.Coerce(a.Default)
		if err != nil {
			return schema.Field{}, fmt.Errorf("default: %w", err)
		}
		f.Default = def
	}

	if a.Required {
		f.Rules = append(f.Rules, schema.Presence())
	}
	if a.Format != "" {
		rule, err := schema.Format(a.Format, a.Message)
		if err != nil {
			return schema.Field{}, err
		}
		f.Rules = append(f.Rules, rule)
	}
	if a.Min != nil || a.Max != nil {
		f.Rules = append(f.Rules, schema.Range(a.Min, a.Max))
	}
	if a.MinLength > 0 || a.MaxLength > 0 {
		if a.MaxLength > 0 && a.MinLength > a.MaxLength {
			return schema.Field{}, fmt.Errorf("min_length %d exceeds max_length %d", a.MinLength, a.MaxLength)
		}
		f.Rules = append(f.Rules, schema.Length(a.MinLength, a.MaxLength))
	}
	if len(a.In) > 0 {
		values := make([]any, len(a.In))
		for i, v := range a.In {
			c, err := typ.Coerce(v)
			if err != nil {
				return schema.Field{}, fmt.Errorf("in: %w", err)
			}
			values[i] = c
		}
		f.Rules = append(f.Rules, schema.Inclusion(values...))
	}
	return f, nil
}
