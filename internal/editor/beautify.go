package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/ai/sse"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// SessionStatus is the lifecycle of a beautify session
type SessionStatus string

const (
	SessionRunning  SessionStatus = "running"
	SessionComplete SessionStatus = "complete"
	SessionFailed   SessionStatus = "failed"
	SessionClosed   SessionStatus = "closed"
)

// Iteration is one completed analyse-and-change cycle
type Iteration struct {
	Iteration  int         `json:"iteration"`
	Screenshot string      `json:"screenshot,omitempty"`
	Changes    []ai.Change `json:"changes"`
	Reasoning  string      `json:"reasoning,omitempty"`
	IsComplete bool        `json:"isComplete"`
}

// Progress is reported after every stream event
type Progress struct {
	Status     SessionStatus `json:"status"`
	Event      ai.EventType  `json:"event"`
	Iteration  int           `json:"iteration"`
	Limit      int           `json:"limit"`
	Completed  int           `json:"completed"`
	Message    string        `json:"message,omitempty"`
	Screenshot bool          `json:"screenshot,omitempty"`
}

var errSessionClosed = errors.New("beautify session closed")

// Session is a running beautify stream for one block. Its proposed schema
// is applied only when the stream reports completion, and at most once.
type Session struct {
	mu       sync.Mutex
	editor   *Editor
	block    string
	limit    int
	progress func(Progress)
	cancel   context.CancelFunc
	done     chan struct{}

	status     SessionStatus
	iterations []Iteration
	current    *Iteration
	applied    bool
	err        error
}

// Beautify opens a streamed session refining the items of block. The stream
// runs in the background; progress, if set, is called after every event
// until the session ends or is closed. progress must not call back into the
// session.
func (e *Editor) Beautify(ctx context.Context, block, formType string, progress func(Progress)) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		editor:   e,
		block:    block,
		limit:    e.cfg.BeautifyIterations,
		progress: progress,
		cancel:   cancel,
		done:     make(chan struct{}),
		status:   SessionRunning,
	}

	req := ai.BeautifyRequest{
		Schema:         e.source(),
		BlockName:      block,
		FormType:       formType,
		IterationLimit: s.limit,
	}
	go s.run(ctx, req)
	return s
}

// Wait blocks until the stream ends and returns its error, if any
func (s *Session) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when the stream ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close abandons the session. No further progress is reported and a later
// completion is not applied.
func (s *Session) Close() {
	s.mu.Lock()
	if s.status == SessionRunning {
		s.status = SessionClosed
	}
	s.mu.Unlock()
	s.cancel()
}

// Status returns the session status
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Iterations returns the completed iterations
func (s *Session) Iterations() []Iteration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Iteration(nil), s.iterations...)
}

// Applied reports whether the final schema was applied
func (s *Session) Applied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Block returns the block being beautified
func (s *Session) Block() string {
	return s.block
}

func (s *Session) run(ctx context.Context, req ai.BeautifyRequest) {
	defer close(s.done)
	defer s.cancel()

	err := s.editor.cfg.AI.BeautifyBlock(ctx, req, s.handle)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.status == SessionClosed:
	case errors.Is(err, errSessionClosed):
	case err != nil:
		s.fail(err)
	case s.status == SessionRunning:
		s.fail(fmt.Errorf("stream ended before completion"))
	}
	if s.err != nil {
		log.Printf("beautify %q failed: %v", s.block, s.err)
	}
}

func (s *Session) handle(raw sse.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SessionRunning {
		return errSessionClosed
	}

	ev, err := ai.DecodeEvent(raw)
	if err != nil {
		s.fail(err)
		return errSessionClosed
	}

	switch ev.Type {
	case ai.EventIterationStart:
		s.current = &Iteration{Iteration: ev.Iteration, Changes: []ai.Change{}}
	case ai.EventScreenshot:
		s.iteration(ev.Iteration).Screenshot = ev.Screenshot
	case ai.EventAnalysis:
		s.iteration(ev.Iteration).Reasoning = ev.Reasoning
	case ai.EventChanges:
		it := s.iteration(ev.Iteration)
		it.Changes = append(it.Changes, ev.Changes...)
	case ai.EventIterationComplete:
		it := s.iteration(ev.Iteration)
		it.IsComplete = true
		s.iterations = append(s.iterations, *it)
		s.current = nil
	case ai.EventComplete:
		s.apply(ev.Schema)
	case ai.EventError:
		msg := ev.Message
		if msg == "" {
			msg = "beautify failed"
		}
		s.fail(errors.New(msg))
	}

	s.report(ev)
	if s.status != SessionRunning {
		return errSessionClosed
	}
	return nil
}

// iteration returns the open iteration, starting one if the stream skipped
// iteration-start
func (s *Session) iteration(n int) *Iteration {
	if s.current == nil {
		if n == 0 {
			n = len(s.iterations) + 1
		}
		s.current = &Iteration{Iteration: n, Changes: []ai.Change{}}
	}
	return s.current
}

func (s *Session) apply(next schema.Schema) {
	if s.applied {
		return
	}
	s.applied = true
	s.status = SessionComplete

	s.editor.mu.Lock()
	s.editor.cfg.OnChange(next)
	s.editor.mu.Unlock()
}

func (s *Session) fail(err error) {
	s.status = SessionFailed
	s.err = err
}

func (s *Session) report(ev ai.BeautifyEvent) {
	if s.progress == nil {
		return
	}
	p := Progress{
		Status:     s.status,
		Event:      ev.Type,
		Iteration:  ev.Iteration,
		Limit:      s.limit,
		Completed:  len(s.iterations),
		Message:    ev.Message,
		Screenshot: ev.Screenshot != "",
	}
	if p.Iteration == 0 && s.current != nil {
		p.Iteration = s.current.Iteration
	}
	s.progress(p)
}
