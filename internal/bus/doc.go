// Package bus carries the two realtime events of the calling system,
// new_call and queue_updated, between sessions.
//
// Every session constructs its own Bus. Publish delivers to the session's
// own handlers synchronously, in registration order, before it returns, and
// then hands the envelope to a Relay that forwards it to the other open
// sessions. Remote envelopes are delivered asynchronously on a single
// goroutine per Bus, so handlers of one session never run concurrently with
// each other for remote events.
//
// Delivery is best effort. There is no acknowledgement and no replay: a
// handler registered after a publish never sees it. Consumers hydrate from
// the store on startup and re-read the store in their handlers.
//
//	hub := bus.NewHub()
//	reception := bus.New("reception", hub.Join())
//	display := bus.New("display", hub.Join())
//	display.Start(ctx)
//	bus.OnNewCall(display, func(c models.PatientCall) { ... })
//	bus.PublishNewCall(ctx, reception, call)
package bus
