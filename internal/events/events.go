// Package events provides an event system for server and async-task notifications.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventServerStarted is emitted when the accept loop is listening
	EventServerStarted EventType = "server_started"
	// EventServerStopped is emitted after the pool has drained
	EventServerStopped EventType = "server_stopped"
	// EventRequestServed is emitted after a response has been written
	EventRequestServed EventType = "request_served"
	// EventAsyncScheduled is emitted when /async hands work to the executor
	EventAsyncScheduled EventType = "async_scheduled"
	// EventAsyncCompleted is emitted when the delayed task has written its response
	EventAsyncCompleted EventType = "async_completed"
	// EventResultsRecorded is emitted when entries are appended to the job store
	EventResultsRecorded EventType = "results_recorded"
)

// Event represents a server event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Method  string `json:"method,omitempty"`
	Path    string `json:"path,omitempty"`
	Status  int    `json:"status,omitempty"`
	Entries int    `json:"entries,omitempty"`
	Total   int    `json:"total,omitempty"`
	Addr    string `json:"addr,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewServerStartedEvent creates a server started event
func NewServerStartedEvent(addr string) Event {
	return Event{
		Type:      EventServerStarted,
		Timestamp: time.Now(),
		Data:      EventData{Addr: addr},
	}
}

// NewServerStoppedEvent creates a server stopped event
func NewServerStoppedEvent(addr string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventServerStopped,
		Timestamp: time.Now(),
		Data:      EventData{Addr: addr, Error: errMsg},
	}
}

// NewRequestServedEvent creates a request served event
func NewRequestServedEvent(source, method, path string, status int) Event {
	return Event{
		Type:      EventRequestServed,
		Timestamp: time.Now(),
		Source:    source,
		Data: EventData{
			Method: method,
			Path:   path,
			Status: status,
		},
	}
}

// NewAsyncScheduledEvent creates an async scheduled event
func NewAsyncScheduledEvent(source string) Event {
	return Event{
		Type:      EventAsyncScheduled,
		Timestamp: time.Now(),
		Source:    source,
	}
}

// NewAsyncCompletedEvent creates an async completed event.
// err is the error of the unsolicited write, if any.
func NewAsyncCompletedEvent(source string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventAsyncCompleted,
		Timestamp: time.Now(),
		Source:    source,
		Data:      EventData{Error: errMsg},
	}
}

// NewResultsRecordedEvent creates a results recorded event
func NewResultsRecordedEvent(entries, total int) Event {
	return Event{
		Type:      EventResultsRecorded,
		Timestamp: time.Now(),
		Data: EventData{
			Entries: entries,
			Total:   total,
		},
	}
}
