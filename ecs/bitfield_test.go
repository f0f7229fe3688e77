package ecs_test

import (
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestBitfieldSetHasClear(t *testing.T) {
	b := ecs.NewBitfield(4)
	assert.False(t, b.HasBit(2))

	b.SetBit(2)
	assert.True(t, b.HasBit(2))
	assert.Equal(t, 1, b.CountBits())

	b.ClearBit(2)
	assert.False(t, b.HasBit(2))
	assert.Equal(t, 0, b.CountBits())
}

func TestBitfieldSetClearRoundTrip(t *testing.T) {
	b := ecs.NewBitfield(0)
	before := b.Clone()

	b.SetBit(130)
	b.ClearBit(130)

	assert.Equal(t, before.CountBits(), b.CountBits())
	for i := 0; i < 200; i++ {
		assert.Equal(t, before.HasBit(i), b.HasBit(i))
	}
}

func TestBitfieldGrowsAcrossWords(t *testing.T) {
	b := ecs.NewBitfield(0)
	b.SetBit(200)
	assert.True(t, b.HasBit(200))
	assert.False(t, b.HasBit(199))
	assert.Equal(t, 1, b.CountBits())
}

func TestBitfieldContainsAll(t *testing.T) {
	required := ecs.NewBitfield(0)
	required.SetBit(1)
	required.SetBit(3)

	b := ecs.NewBitfield(0)
	assert.False(t, b.ContainsAll(&required))

	b.SetBit(1)
	assert.False(t, b.ContainsAll(&required))

	b.SetBit(3)
	assert.True(t, b.ContainsAll(&required))

	b.SetBit(9)
	assert.True(t, b.ContainsAll(&required))
}

func TestBitfieldIntersectsAny(t *testing.T) {
	other := ecs.NewBitfield(0)
	other.SetBit(5)
	other.SetBit(70)

	b := ecs.NewBitfield(0)
	assert.False(t, b.IntersectsAny(&other))

	b.SetBit(6)
	assert.False(t, b.IntersectsAny(&other))

	b.SetBit(70)
	assert.True(t, b.IntersectsAny(&other))
}

func TestBitfieldUnionIntersect(t *testing.T) {
	a := ecs.NewBitfield(0)
	a.SetBit(1)
	a.SetBit(2)

	b := ecs.NewBitfield(0)
	b.SetBit(2)
	b.SetBit(3)

	union := a.Clone()
	union.Union(&b)
	assert.True(t, union.HasBit(1))
	assert.True(t, union.HasBit(2))
	assert.True(t, union.HasBit(3))

	inter := a.Clone()
	inter.Intersect(&b)
	assert.False(t, inter.HasBit(1))
	assert.True(t, inter.HasBit(2))
	assert.False(t, inter.HasBit(3))
}
