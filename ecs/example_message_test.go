package ecs_test

import (
	"fmt"

	"github.com/plus3/kernecs/ecs"
)

// ExampleMessageSystem_priority dispatches a global message to three
// subscribers registered at priorities 10, 0, and 5, and shows they run
// highest-priority-first regardless of registration order.
func ExampleMessageSystem_priority() {
	es := ecs.NewEntitySystem(0)
	ms := es.GetMessageSystem()
	requestId := ecs.HashRequestID("R")

	compLow := ecs.CreateComponent(es, Number{Value: 0})
	compZero := ecs.CreateComponent(es, Number{Value: 1})
	compHigh := ecs.CreateComponent(es, Number{Value: 2})

	ms.RegisterMessage(requestId, compHigh, func(*ecs.Envelope) { fmt.Println("priority 10") }, 10, false)
	ms.RegisterMessage(requestId, compZero, func(*ecs.Envelope) { fmt.Println("priority 0") }, 0, false)
	ms.RegisterMessage(requestId, compLow, func(*ecs.Envelope) { fmt.Println("priority 5") }, 5, false)

	ms.SendGlobalMessage(requestId, ecs.NewPayload(nil))

	// Output:
	// priority 10
	// priority 5
	// priority 0
}
