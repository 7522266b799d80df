/*
Package loader builds wizard registries from YAML or JSON definition files.

	name: signup
	steps:
	  - key: name
	    attributes:
	      - {name: name, type: string, required: true}
	  - key: age
	    attributes:
	      - {name: age, type: int, required: true, min: 18}
	  - key: guardian
	    personal: true
	    skip_if: {attribute: age, op: gte, value: 18}
	    attributes:
	      - {name: guardian_email, type: string, required: true, format: "^[^@]+@[^@]+$"}

Skip conditions read the Store, so they see saved answers only.
*/
package loader
