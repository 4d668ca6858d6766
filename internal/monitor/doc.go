// Package monitor drives the polling loop: fetch the calendar, normalize
// it, drop repeats and push what is new.
//
// The loop has a single state and no terminal state; it runs until its
// context is cancelled. A failing tick degrades to "no slots" or "no
// update" and never stops the loop. The fingerprint of the last delivered
// push is owned by Run and threaded through Tick, so there is exactly one
// writer and no shared state.
package monitor
