// Package ecs provides ECS adapters for trellis.
package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// RedrawEventType is the Donburi event type for trellis host redraws.
// Subscribe to this in your ECS systems to react to scene re-recordings.
var RedrawEventType = events.NewEventType[trellis.RedrawEvent]()

type donburiObserver struct {
	world donburi.World
}

// NewDonburiObserver creates a RedrawSink backed by a Donburi world.
// Redraw events are published to RedrawEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiObserver(world donburi.World) trellis.RedrawSink {
	return &donburiObserver{world: world}
}

func (o *donburiObserver) EmitRedraw(event trellis.RedrawEvent) {
	RedrawEventType.Publish(o.world, event)
}
