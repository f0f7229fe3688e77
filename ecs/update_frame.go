package ecs

// UpdateFrame is handed to every System on each Scheduler tick: a delta
// time, a Commands buffer for deferred structural changes, and the
// EntitySystem itself for read access and view construction.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Entities  *EntitySystem
}

func newUpdateFrame(dt float64, es *EntitySystem) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Entities:  es,
	}
}
