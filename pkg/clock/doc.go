/*
Package clock provides the execution lane every session runs on.

A Loop owns one goroutine. Functions handed to Post or Do and the callbacks of
timers created with AfterFunc all run on that goroutine, one at a time, so the
state they touch needs no mutex.

Manual implements the same contracts over virtual time. Tests advance it
explicitly and callbacks run inline, in due order, on the caller's goroutine.
*/
package clock
