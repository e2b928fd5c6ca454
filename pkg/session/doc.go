/*
Package session owns the navigation state of a user and everything that may
mutate it.

A Session bundles the NavigationState with the decision engine, the reveal
controller, the grid transition sequencer and their latches. Every mutation runs
on the session's execution lane (see package clock), so none of that state is
guarded by a mutex; the latches alone decide whether a request is accepted.

The Manager keeps live sessions by id, persists their snapshots through a
ports.StateStore and serializes access per id, optionally across replicas with a
ports.DistributedLocker.
*/
package session
