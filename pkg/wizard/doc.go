/*
Package wizard orchestrates an ordered sequence of steps.

A Registry is the immutable, ordered set of step definitions of one wizard type. A Wizard
is the per-request view of that registry over a Store and a current key: it navigates
forward and backward around skipped steps, aggregates validation across every eligible
step (visited or not), and runs the completion transaction.

The Wizard keeps no state machine of its own. Position, validity and completion are
derived on every call from (registry, Store contents, current key), so it is safe to
reconstruct per request.

# Usage

	reg := wizard.MustDefine("signup", nameStep, ageStep, postcodeStep)

	w, err := wizard.New(reg, store.New(session), currentKey)
	if err != nil {
		return err // domain.ErrUnknownStep for a stale key
	}

	s := w.FindCurrentStep()
	s.AssignAttributes(params)
	if !s.Save() {
		return render(s.Errors())
	}
	if w.IsComplete() {
		_, err := w.Complete(ctx, func(result any) { redirectToDone(result) })
		return err
	}
	redirectTo(w.NextKey())
*/
package wizard
