// Package ecs provides ECS adapters for trellis's redraw notifications.
//
// The adapter is [NewDonburiObserver], which publishes every host redraw into
// a [Donburi] world as a typed event. Subscribe to [RedrawEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	host.SetRedrawSink(ecs.NewDonburiObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
