package ecs_test

import (
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityIdPacking(t *testing.T) {
	id := ecs.NewEntityId(42, 7)
	assert.Equal(t, uint32(42), id.Index())
	assert.Equal(t, uint32(7), id.Generation())
	assert.False(t, id.IsNone())
	assert.True(t, ecs.EntityId(0).IsNone())
}

func TestComponentIdPacking(t *testing.T) {
	id := ecs.NewComponentId(3, 99, 5)
	assert.Equal(t, uint16(3), id.Family())
	assert.Equal(t, uint32(99), id.Index())
	assert.Equal(t, uint32(5), id.Generation())
	assert.False(t, id.IsNone())
	assert.True(t, ecs.ComponentId(0).IsNone())
}

// Hash fixture (spec §8): hash("Ping") == hash("Ping") and hash("") ==
// 0x811C9DC5.
func TestHashRequestIdFixture(t *testing.T) {
	assert.Equal(t, ecs.HashRequestID("Ping"), ecs.HashRequestID("Ping"))
	assert.Equal(t, ecs.RequestId(0x811C9DC5), ecs.HashRequestID(""))
}

func TestHashRequestIdDistinctForDistinctNames(t *testing.T) {
	assert.NotEqual(t, ecs.HashRequestID("Ping"), ecs.HashRequestID("Pong"))
}
