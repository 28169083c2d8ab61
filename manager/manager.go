// Package manager routes CAN traffic between a bus and processing tasks.
// Received frames are dispatched by arbitration ID to the tasks that
// registered for them; task results and cyclic jobs feed a shared outgoing
// queue drained by a single sender.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/orinworks/canctl/driver"
)

// Queue depths. The task queues are small on purpose: a task that cannot
// keep up loses frames instead of stalling the dispatcher.
const (
	outgoingDepth = 256
	taskDepth     = 64
)

// Handler processes one received frame and returns the response payload,
// or nil when the frame produces no response.
type Handler func(driver.Frame) ([]byte, error)

// Task couples a set of input IDs with a handler and the IDs its
// responses are sent to.
type Task struct {
	Name   string
	Listen []uint32
	Emit   []uint32
	Handle Handler
}

// CycleJob transmits one fixed frame at a fixed period.
type CycleJob struct {
	Name   string
	Frame  driver.Frame
	Period time.Duration
}

// Manager owns the bus goroutines. Configure with AddTask/AddCycleJob,
// then Start; Stop cancels everything and waits.
type Manager struct {
	bus   driver.Bus
	tasks []Task
	jobs  []CycleJob
	out   chan driver.Frame

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(bus driver.Bus) *Manager {
	return &Manager{
		bus: bus,
		out: make(chan driver.Frame, outgoingDepth),
	}
}

func (m *Manager) AddTask(t Task) error {
	if t.Handle == nil {
		return fmt.Errorf("manager: task %q has no handler", t.Name)
	}
	if len(t.Listen) == 0 {
		return fmt.Errorf("manager: task %q listens to no IDs", t.Name)
	}
	for _, existing := range m.tasks {
		if existing.Name == t.Name {
			return fmt.Errorf("manager: duplicate task name %q", t.Name)
		}
	}
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *Manager) AddCycleJob(j CycleJob) error {
	if j.Period <= 0 {
		return fmt.Errorf("manager: cycle job %q needs a positive period", j.Name)
	}
	if err := j.Frame.Validate(); err != nil {
		return fmt.Errorf("manager: cycle job %q: %w", j.Name, err)
	}
	m.jobs = append(m.jobs, j)
	return nil
}

// Send queues a frame for transmission. Drops the frame when the outgoing
// queue is full, matching the lossy dispatch policy.
func (m *Manager) Send(f driver.Frame) {
	select {
	case m.out <- f:
	default:
		log.Printf("Manager: outgoing queue full, dropped frame ID=0x%X", f.ID)
	}
}

// Start launches the sender, the dispatcher and one worker per task.
func (m *Manager) Start(ctx context.Context) error {
	if m.started {
		return errors.New("manager: already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.sender()

	taskChans := make([]chan driver.Frame, len(m.tasks))
	for i, t := range m.tasks {
		taskChans[i] = make(chan driver.Frame, taskDepth)
		m.wg.Add(1)
		go m.worker(t, taskChans[i])
	}

	m.wg.Add(1)
	go m.dispatcher(taskChans)

	m.wg.Add(len(m.jobs))
	for _, j := range m.jobs {
		go m.cycle(j)
	}

	log.Printf("Manager started: %d tasks, %d cycle jobs", len(m.tasks), len(m.jobs))
	return nil
}

// Stop cancels all goroutines and waits for them to drain.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	log.Println("Manager stopped")
}

// sender drains the outgoing queue onto the bus. Send failures are
// warnings, the loop keeps going.
func (m *Manager) sender() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case f := <-m.out:
			if err := m.bus.Send(f); err != nil {
				log.Printf("Warning: send ID=0x%X failed: %v", f.ID, err)
			}
		}
	}
}

// dispatcher routes received frames to every task registered for their
// ID. Unmatched frames are dropped silently.
func (m *Manager) dispatcher(taskChans []chan driver.Frame) {
	defer m.wg.Done()
	rx := m.bus.Subscribe(driver.RxBufferSize)
	for {
		select {
		case <-m.ctx.Done():
			return
		case f, ok := <-rx:
			if !ok {
				return
			}
			for i, t := range m.tasks {
				if !listensTo(t, f.ID) {
					continue
				}
				select {
				case taskChans[i] <- f:
				default:
					log.Printf("Manager: task %q queue full, dropped frame ID=0x%X", t.Name, f.ID)
				}
			}
		}
	}
}

func (m *Manager) worker(t Task, in <-chan driver.Frame) {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case f := <-in:
			result, err := t.Handle(f)
			if err != nil {
				log.Printf("Task %q: handler error for ID=0x%X: %v", t.Name, f.ID, err)
				continue
			}
			if result == nil {
				continue
			}
			for _, id := range t.Emit {
				resp, err := driver.NewFrame(id, result, f.IsFD)
				if err != nil {
					log.Printf("Task %q: bad response frame for ID=0x%X: %v", t.Name, id, err)
					continue
				}
				m.Send(resp)
			}
		}
	}
}

func (m *Manager) cycle(j CycleJob) {
	defer m.wg.Done()
	ticker := time.NewTicker(j.Period)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.Send(j.Frame)
		}
	}
}

func listensTo(t Task, id uint32) bool {
	for _, want := range t.Listen {
		if want == id {
			return true
		}
	}
	return false
}
