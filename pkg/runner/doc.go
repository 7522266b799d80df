/*
Package runner drives a stepwise engine from a terminal.

The Runner shows the current step, prompts for each of its attributes through an
IOHandler, submits the answers and follows the outcome: re-prompting on errors,
advancing on success and stopping once the wizard completes. Typed lines pass
through SanitizeInput before they reach the engine. The transport adapters use
SanitizeParams for the same purpose.

At any prompt the user may type :back, :review or :quit instead of an answer.

# Usage

	r := runner.NewRunner(engine,
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	res, err := r.Run(ctx, "user-1")
*/
package runner
