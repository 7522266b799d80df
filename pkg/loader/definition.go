package loader

// File is the top-level document.
type File struct {
	Name  string     `yaml:"name" json:"name"`
	Steps []StepSpec `yaml:"steps" json:"steps"`
}

// StepSpec describes one step.
type StepSpec struct {
	Key        string          `yaml:"key" json:"key"`
	Title      string          `yaml:"title" json:"title"`
	Personal   bool            `yaml:"personal" json:"personal"`
	Attributes []AttributeSpec `yaml:"attributes" json:"attributes"`
	SkipIf     *Condition      `yaml:"skip_if" json:"skip_if"`
}

// AttributeSpec describes one attribute and its validations.
type AttributeSpec struct {
	Name      string   `yaml:"name" json:"name"`
	Type      string   `yaml:"type" json:"type"`
	Default   any      `yaml:"default" json:"default"`
	Required  bool     `yaml:"required" json:"required"`
	Format    string   `yaml:"format" json:"format"`
	Message   string   `yaml:"message" json:"message"`
	Min       *float64 `yaml:"min" json:"min"`
	Max       *float64 `yaml:"max" json:"max"`
	MinLength int      `yaml:"min_length" json:"min_length"`
	MaxLength int      `yaml:"max_length" json:"max_length"`
	In        []any    `yaml:"in" json:"in"`
}

// Condition skips a step based on a stored attribute.
type Condition struct {
	Attribute string `yaml:"attribute" json:"attribute"`
	Op        string `yaml:"op" json:"op"`
	Value     any    `yaml:"value" json:"value"`
}
