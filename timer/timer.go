// timer/timer.go
package timer

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Task is a scheduled callback, optionally repeating.
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager schedules callbacks on a heap driven by a coarse tick. Used for
// periodic maintenance work (room reaping, gauge sampling), not for
// per-connection timeouts.
type Manager struct {
	queue   taskQueue
	mutex   sync.Mutex
	nextID  int64
	trigger chan *Task
	cancel  context.CancelFunc
}

// NewManager starts the scheduling loop.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		queue:   make(taskQueue, 0),
		trigger: make(chan *Task, 1000),
		nextID:  1,
		cancel:  cancel,
	}
	heap.Init(&m.queue)
	go m.process(ctx)
	return m
}

// Schedule runs callback after delay; a non-zero interval makes it repeat.
// Returns the task id for Cancel.
func (m *Manager) Schedule(delay, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		ID:       m.nextID,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

// Cancel removes a pending task.
func (m *Manager) Cancel(taskID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == taskID {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts down the scheduling loop. Pending tasks are dropped.
func (m *Manager) Stop() {
	m.cancel()
}

func (m *Manager) process(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()
			for m.queue.Len() > 0 {
				task := m.queue[0]
				if task.Execute.After(now) {
					break
				}
				heap.Pop(&m.queue)
				m.trigger <- task
				if task.Interval > 0 {
					task.Execute = now.Add(task.Interval)
					heap.Push(&m.queue, task)
				}
			}
			m.mutex.Unlock()

		case task := <-m.trigger:
			go task.Callback()
		}
	}
}
