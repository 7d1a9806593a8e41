package hardware

import (
	"sync"
	"time"
)

// MockSensor replays a scripted sequence of values, repeating the last one
// when the script runs out. Used in tests and by the mock component set
// selected with hardware.mock.
type MockSensor struct {
	mu     sync.Mutex
	name   string
	values []float64
	index  int
}

// NewMockSensor returns a sensor that replays the given values in order.
func NewMockSensor(name string, values ...float64) *MockSensor {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &MockSensor{name: name, values: values}
}

func (s *MockSensor) Name() string { return s.name }

// Read returns the next scripted value.
func (s *MockSensor) Read() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.values[s.index]
	if s.index < len(s.values)-1 {
		s.index++
	}
	return v
}

// SetValues replaces the script and rewinds it.
func (s *MockSensor) SetValues(values ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.index = 0
}

// Edge records one observable state transition of a mock actuator.
type Edge struct {
	On        bool
	Timestamp time.Time
}

// MockActuator tracks logical state and records an Edge per transition.
// Idempotent sets produce no edge.
type MockActuator struct {
	mu    sync.Mutex
	name  string
	state bool
	edges []Edge
}

// NewMockActuator returns a mock actuator in the off state.
func NewMockActuator(name string) *MockActuator {
	return &MockActuator{name: name}
}

func (a *MockActuator) Name() string { return a.name }

// Set flips the state if it differs, recording an edge.
func (a *MockActuator) Set(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == on {
		return
	}
	a.state = on
	a.edges = append(a.edges, Edge{On: on, Timestamp: time.Now()})
}

// State returns the current logical state.
func (a *MockActuator) State() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Edges returns a copy of all recorded transitions.
func (a *MockActuator) Edges() []Edge {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Edge, len(a.edges))
	copy(out, a.edges)
	return out
}
