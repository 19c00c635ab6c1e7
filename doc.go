// Package des is a discrete-event simulation scheduler: it maintains a
// virtual clock that advances from event to event, lets collaborators
// schedule and cancel events at future virtual times, and dispatches
// them in (time, insertion order) order so that simulations are
// deterministic given identical inputs.
//
// The package wraps internal/cqueue (the calendar queue) and
// internal/arena (the paged node allocator) behind a small runtime
// surface: New, ScheduleAt/ScheduleIn, Cancel, Step, Run. Everything
// else — the network-simulation model, parsers, macros, randomness,
// logging configuration beyond the runtime's own diagnostics — is a
// collaborator's concern, not this package's.
package des
