package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTask struct {
	name      string
	heartbeat atomic.Int64
	runs      atomic.Int32
	failTimes int32
}

func newFakeTask(name string) *fakeTask {
	t := &fakeTask{name: name}
	t.heartbeat.Store(time.Now().UnixNano())
	return t
}

func (t *fakeTask) Name() string { return t.name }

func (t *fakeTask) LastHeartbeat() time.Time { return time.Unix(0, t.heartbeat.Load()) }

func (t *fakeTask) Run(ctx context.Context) error {
	n := t.runs.Add(1)
	t.heartbeat.Store(time.Now().UnixNano())
	if n <= t.failTimes {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisor_RestartsFailingTask(t *testing.T) {
	task := newFakeTask("flaky")
	task.failTimes = 2

	sup := NewSupervisor(nil, task)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	<-done

	assert.GreaterOrEqual(t, task.runs.Load(), int32(3))
}

func TestSupervisor_AllDeadFalseWhenHeartbeatsFresh(t *testing.T) {
	task := newFakeTask("alive")
	sup := NewSupervisor(nil, task)
	assert.False(t, sup.AllDead(time.Now()))
}

func TestSupervisor_AllDeadTrueWhenHeartbeatsStale(t *testing.T) {
	task := newFakeTask("stale")
	task.heartbeat.Store(time.Now().Add(-time.Hour).UnixNano())
	sup := NewSupervisor(nil, task)
	assert.True(t, sup.AllDead(time.Now()))
}

func TestSupervisor_AllDeadFalseWithNoTasks(t *testing.T) {
	sup := NewSupervisor(nil)
	assert.False(t, sup.AllDead(time.Now()))
}

func TestSupervisor_AllDeadRequiresAllStale(t *testing.T) {
	fresh := newFakeTask("fresh")
	stale := newFakeTask("stale")
	stale.heartbeat.Store(time.Now().Add(-time.Hour).UnixNano())

	sup := NewSupervisor(nil, fresh, stale)
	assert.False(t, sup.AllDead(time.Now()))
}
