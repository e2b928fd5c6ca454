/*
Package letluck lets luck decide: it walks a tree of categories down to a pool
of items, picks one while avoiding recent repeats, and reveals the winner with
a roulette-style highlight.

# Concept

A category tree is a set of nodes. Branches point at children, leaves hold a
pool of items, and anything else is a dead end. A session sits somewhere in
that tree. Deciding from anywhere walks randomly down to a leaf, picks an item
with the anti-repeat rule, and starts the reveal. The winner becomes the
session result once the reveal lands on it.

# Usage

	app, err := letluck.New(letluck.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	s, err := app.Open(ctx, "default", session.WithRenderer(myRenderer))
	if err != nil {
		log.Fatal(err)
	}
	decision, err := s.Decide(ctx)

# Surfaces

The same App backs the interactive terminal (Runner), the HTTP API
(pkg/adapters/http) and the MCP server (pkg/adapters/mcp).
*/
package letluck
