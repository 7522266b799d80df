package loader

import (
	"fmt"
	"reflect"

	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/mitchellh/mapstructure"
)

var ops = map[string]bool{
	"eq": true, "ne": true,
	"lt": true, "lte": true, "gt": true, "gte": true,
	"blank": true, "present": true,
}

func (c *Condition) check() error {
	if c.Attribute == "" {
		return fmt.Errorf("skip_if needs an attribute")
	}
	if !ops[c.Op] {
		return fmt.Errorf("unknown skip_if op %q", c.Op)
	}
	return nil
}

// predicate returns the Skip function of the condition.
func (c *Condition) predicate() func(*step.Step) bool {
	return func(s *step.Step) bool {
		v, _ := s.Stored(c.Attribute)
		return c.Eval(v)
	}
}

// Eval applies the condition to a stored value. Ordering ops are false unless both
// sides are numeric.
func (c *Condition) Eval(v any) bool {
	switch c.Op {
	case "blank":
		return schema.IsBlank(v)
	case "present":
		return !schema.IsBlank(v)
	case "eq":
		return equal(v, c.Value)
	case "ne":
		return !equal(v, c.Value)
	}

	a, okA := number(v)
	b, okB := number(c.Value)
	if !okA || !okB {
		return false
	}
	switch c.Op {
	case "lt":
		return a < b
	case "lte":
		return a <= b
	case "gt":
		return a > b
	case "gte":
		return a >= b
	}
	return false
}

func equal(a, b any) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.(type) {
	case bool:
		return 0, false
	}
	var f float64
	if err := mapstructure.WeakDecode(v, &f); err != nil {
		return 0, false
	}
	if s, ok := v.(string); ok && s == "" {
		return 0, false
	}
	return f, true
}
