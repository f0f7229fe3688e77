package ecs_test

import (
	"sync/atomic"
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestJobQueueRunVisitsEveryIndexOnce(t *testing.T) {
	q := ecs.NewJobQueue(4)
	var seen [100]int32

	err := q.Run(100, func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	assert.NoError(t, err)

	for i, count := range seen {
		assert.Equal(t, int32(1), count, "index %d", i)
	}
}

func TestJobQueueRunPropagatesFirstError(t *testing.T) {
	q := ecs.NewJobQueue(2)
	sentinel := assertErr("boom")

	err := q.Run(10, func(i int) error {
		if i == 5 {
			return sentinel
		}
		return nil
	})

	assert.Equal(t, sentinel, err)
}

func TestJobQueueDefaultWorkerCount(t *testing.T) {
	q := ecs.NewJobQueue(0)
	var total int32
	q.RunEach(16, func(int) {
		atomic.AddInt32(&total, 1)
	})
	assert.EqualValues(t, 16, total)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
