// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface instead of calling time.Now,
// time.After, time.NewTicker, or time.Sleep directly. Real() provides the
// standard library behavior. Fake() provides a deterministic clock for
// tests that advances only when Advance is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that observe time:
//
//	type Watcher struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	w := &Watcher{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	w := &Watcher{clock: c}
//	// ... start goroutines ...
//	c.WaitForTimers(1)         // wait for the goroutine to register
//	c.Advance(5 * time.Second) // fire the timer deterministically
//
// # FakeClock Synchronization
//
// A goroutine calling Sleep, After, or NewTicker on a FakeClock registers
// a pending waiter. WaitForTimers blocks until a given number of waiters
// are registered, which removes the race between registration and the
// test advancing time. Never synchronize fake-clock tests with real
// time.Sleep.
package clock
