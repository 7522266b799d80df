/*
Package stepwise builds multi-step forms ("wizards") whose answers live in a
caller-owned session.

A wizard is an ordered list of steps. Each step declares typed attributes and
validations, may be skipped based on earlier answers, and is saved to the session
only when valid. The wizard is complete when the visitor is on the last eligible step
and every eligible step is valid, visited or not. Completion runs a single
transaction: finalize, purge the session, hand the result to the caller.

# Packages

  - pkg/store: the get/set/purge façade over the session mapping.
  - pkg/schema: attribute types, coercion and validation rules.
  - pkg/step: step definitions and per-request step instances.
  - pkg/wizard: the registry of steps and the per-request wizard.
  - pkg/session, pkg/adapters: where the session mapping is persisted.
  - pkg/loader: wizards defined in YAML.

# Usage

The Engine wraps those pieces into the three actions of a step controller.

	reg := wizard.MustDefine("signup", nameStep, ageStep, postcodeStep)

	eng, err := stepwise.New(reg,
		stepwise.WithSessionStore(memory.NewStore()),
		stepwise.WithCompleter(func(ctx context.Context, w *wizard.Wizard) (any, error) {
			return accounts.Create(ctx, w.ExportData())
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	key := eng.Index()
	view, _ := eng.Show(ctx, sessionID, key)
	render(view)

	out, err := eng.Update(ctx, sessionID, key, form)
	switch out.Kind {
	case stepwise.OutcomeInvalid:
		render(out.View, out.Errors)
	case stepwise.OutcomeAdvance:
		redirect(out.NextKey)
	case stepwise.OutcomeCompleted:
		done(out.Result)
	}

The HTTP, MCP and terminal front ends in this module are thin adapters over the Engine.
*/
package stepwise
