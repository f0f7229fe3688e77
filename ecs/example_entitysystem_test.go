package ecs_test

import (
	"fmt"

	"github.com/plus3/kernecs/ecs"
)

// ExampleEntitySystem_generationalSafety demonstrates the use-after-free
// protection a generational id gives: after an entity is destroyed and its
// index recycled by a later CreateEntity, the stale id from before destroy
// no longer resolves to anything live.
func ExampleEntitySystem_generationalSafety() {
	es := ecs.NewEntitySystem(0)

	first := es.CreateEntity()
	es.DestroyEntity(first)
	second := es.CreateEntity()

	fmt.Println("same index:", first.Index() == second.Index())
	fmt.Println("stale id alive:", es.IsAliveEntity(first))
	fmt.Println("recycled id alive:", es.IsAliveEntity(second))

	// Output:
	// same index: true
	// stale id alive: false
	// recycled id alive: true
}
