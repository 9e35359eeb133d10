/*
Package quest is a session-scoped branching narrative engine driven by loosely matched
natural-language input.

A world is a static graph of scenes joined by labeled choices. Each player owns a session
record (current scene, history, journal, inventory, named entities) that the engine never
keeps: every operation takes a record and returns the one to store. Free-form input is mapped
to one legal choice by a deterministic three-pass matcher (exact id, phrase, keyword); when
nothing matches the session is left untouched and the player is asked to rephrase.

# Usage

	eng, err := quest.New("") // embedded default world
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session, text := eng.StartSession(ctx, "Ana")
	fmt.Println(text)

	session, outcome, text, err := eng.SubmitAction(ctx, session, "follow the glowing tracks")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome.Matched, text)
	fmt.Println(eng.Summarize(session))

Hosts that serve many players keep sessions in a ports.SessionStore and serialize access per
conversation with pkg/session; pkg/service packages that flow behind the five operations, and
pkg/adapters exposes it over HTTP and MCP.
*/
package quest
