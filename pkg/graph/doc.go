/*
Package graph holds the immutable content graph of a quest: the scenes, their ordered choices
and the fixed narration strings of the world.

Graphs are assembled with a fluent Builder, either by hand or by the content loaders in
pkg/adapters, and validated once when Build is called. A built Graph is read-only and can be
shared by any number of goroutines without locking.

Example usage:

	b := graph.New("intro")

	b.Scene("intro").
		Title("The Decree").
		Describe("The bells ring across Eldoria.").
		Choice("go_market", "Head to the bustling market", "market").
		Choice("follow_tracks", "Follow the claw marks", "forest_edge", domain.AddJournal("Tracks lead to the forest."))

	b.Scene("market").Describe("Stalls everywhere.")
	b.Scene("forest_edge").Describe("The trees close in.")

	g, err := b.Build()
*/
package graph
