/*
Package domain contains the core domain models of the quest engine.

It defines the entities of the branching narrative state machine: the Scenes of a content
graph, the Transitions (choices) between them, the Effects a transition applies, and the
Session record that captures one player's progress. This package is kept pure and free of
external dependencies like I/O or persistence.

# Key Entities

  - Scene: a point in the story (description plus ordered choices).
  - Transition: a labeled edge to another scene, selected by its action id.
  - Effect: bookkeeping applied to a Session when a transition is taken.
  - Session: the per-player progress record (current scene, history, journal, inventory).
*/
package domain
