/*
Package dsl provides a fluent builder for wizards, as an alternative to YAML definitions.

Steps are registered in call order, which is the order users walk them.

Example usage:

	reg, err := dsl.New("signup").
		Add("name").
		Required("name", schema.String()).
		Add("guardian").
		Title("Parent or guardian").
		Field("guardian", schema.String()).
		SkipUnless("age", func(v any) bool { n, ok := v.(int); return ok && n < 18 }).
		Add("contact").
		Personal().
		Required("email", schema.String(), schema.MustFormat(`^[^@\s]+@[^@\s]+$`, "is not an email")).
		Build()
*/
package dsl
