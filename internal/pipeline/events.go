package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
	StatusComplete   Status = "complete"
)

// Event is one entry in the ordered progress stream emitted by a pipeline
// run: any number of processing events followed by exactly one terminal
// error or complete event.
type Event struct {
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`
	Data    *ResultSet `json:"data,omitempty"`
}

func Processing(message string) Event {
	return Event{Status: StatusProcessing, Message: message}
}

func ErrorEvent(message string) Event {
	return Event{Status: StatusError, Message: message}
}

func Complete(data *ResultSet) Event {
	return Event{Status: StatusComplete, Data: data}
}

// EventStream is a single-use sequence of events consumed with range-over-func.
type EventStream func(yield func(Event) bool)

// ResultSet accumulates named stage outputs in pipeline order. Marshaling
// preserves insertion order so the emitted payload lists results in the order
// the stages ran.
type ResultSet struct {
	keys   []string
	values map[string]any
}

func NewResultSet() *ResultSet {
	return &ResultSet{values: make(map[string]any)}
}

func (r *ResultSet) Set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *ResultSet) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *ResultSet) Keys() []string {
	return r.keys
}

func (r *ResultSet) Len() int {
	return len(r.keys)
}

func (r *ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("error marshalling result key %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("error marshalling result %q: %w", key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
