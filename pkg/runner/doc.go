/*
Package runner implements the interactive play loop for the quest engine.

It is the bridge between the engine and a terminal or a pipe: it prints the
current scene through a pluggable IOHandler, reads and sanitizes the player's
line, submits it, and persists the returned session after every turn.

# Key Components

  - Runner: the loop. It understands a few meta commands (journal, look, restart, quit)
    and hands everything else to the engine.
  - TextHandler: interactive line IO with an optional markdown renderer.
  - JSONHandler: JSON-Lines IO for headless drivers and tests.
  - Sanitizer: size, UTF-8 and control-character checks applied to every line.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithKey("ana"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}
*/
package runner
