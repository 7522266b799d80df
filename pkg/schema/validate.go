package schema

// Validate checks data against fields and returns every violation.
// Keys of data that no field declares are ignored.
func Validate(fields []Field, data map[string]any) Errors {
	errs := Errors{}
	for _, f := range fields {
		for _, msg := range f.Check(data[f.Name]) {
			errs.Add(f.Name, msg)
		}
	}
	return errs
}
