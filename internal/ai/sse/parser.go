// Package sse parses a server-sent-event stream that arrives in arbitrary
// chunks. It holds no transport; callers feed it whatever they read.
package sse

import (
	"bytes"
	"strings"
)

// DefaultEventType is used for events without an "event:" line
const DefaultEventType = "message"

// Event is one dispatched server-sent event
type Event struct {
	Type string
	Data string
}

// Parser buffers partial lines between Feed calls. Lines end with LF with an
// optional preceding CR; a blank line dispatches the pending event.
type Parser struct {
	partial []byte
	event   string
	data    []string
	pending bool
}

// Feed consumes a chunk and returns the events completed by it
func (p *Parser) Feed(chunk []byte) []Event {
	var events []Event
	p.partial = append(p.partial, chunk...)
	for {
		i := bytes.IndexByte(p.partial, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimSuffix(p.partial[:i], []byte{'\r'}))
		p.partial = p.partial[i+1:]
		if ev, ok := p.line(line); ok {
			events = append(events, ev)
		}
	}
	if len(p.partial) == 0 {
		p.partial = nil
	}
	return events
}

// Flush treats the end of the stream as a final line break and blank line,
// dispatching whatever is pending
func (p *Parser) Flush() []Event {
	var events []Event
	if len(p.partial) > 0 {
		line := strings.TrimSuffix(string(p.partial), "\r")
		p.partial = nil
		if ev, ok := p.line(line); ok {
			events = append(events, ev)
		}
	}
	if ev, ok := p.dispatch(); ok {
		events = append(events, ev)
	}
	return events
}

func (p *Parser) line(line string) (Event, bool) {
	if line == "" {
		return p.dispatch()
	}
	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	field, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "event":
		p.event = value
		p.pending = true
	case "data":
		p.data = append(p.data, value)
		p.pending = true
	}
	return Event{}, false
}

func (p *Parser) dispatch() (Event, bool) {
	if !p.pending {
		return Event{}, false
	}
	ev := Event{Type: p.event, Data: strings.Join(p.data, "\n")}
	if ev.Type == "" {
		ev.Type = DefaultEventType
	}
	p.event = ""
	p.data = nil
	p.pending = false
	return ev, true
}
