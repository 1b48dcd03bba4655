// Package engine is the single owned state object of a flow canvas.
//
// An [Instance] bundles one node/edge store, one viewport model and one
// interaction machine, and is what a rendering adapter binds to:
//
//	inst := engine.New(engine.DefaultOptions())
//	inst.FromObject(doc)
//	unsubscribe := inst.Subscribe(func(ev engine.Event) { redraw(ev) })
//	defer unsubscribe()
//
//	inst.Measure(engine.Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}})
//	inst.Machine().PointerDown(interaction.PointerEvent{X: 120, Y: 40})
//
// # Notifications
//
// Every successful mutation is published to subscribers as one or more
// [Event] values after state is consistent. Node, edge and selection changes
// come from the store; viewport events from the viewport model; connection
// events from the interaction machine.
//
// # Measurement
//
// Node sizes are known only after the adapter has drawn them. Adapters report
// them with [Instance.Measure] once geometry is committed to the display. A
// pending FitViewOnInit is performed by the first Measure call after which
// every visible node has a size.
//
// # Concurrency
//
// An Instance is not safe for concurrent use. Drive it from one goroutine.
package engine
