// Package audit provides structured logging for dispatched actions.
// Log entries follow a key=value format suitable for parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of audit event.
type EventType string

// Event types for action dispatch.
const (
	EventRequest  EventType = "REQUEST"
	EventReject   EventType = "REJECT"
	EventComplete EventType = "COMPLETE"
	EventFail     EventType = "FAIL"
	EventTimeout  EventType = "TIMEOUT"
)

// Event represents an action audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (REQUEST, REJECT, etc.)
	Type EventType

	// ID correlates all events of one dispatch.
	ID string

	// Action is the action name as requested by the caller.
	Action string

	// VMID is the target VM, when the action has one and it was valid.
	VMID string

	// Cmd is the rendered command line (for COMPLETE, FAIL, TIMEOUT events).
	Cmd string

	// Reason is the rejection or failure reason (for REJECT and FAIL events).
	Reason string

	// ExitCode is the command exit code (for COMPLETE and FAIL events).
	ExitCode int

	// Duration is the execution time (for COMPLETE, FAIL, TIMEOUT events).
	Duration time.Duration
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z ACTION REQUEST id=... action="qm-start" vmid=150
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" ACTION ")
	b.WriteString(string(e.Type))

	b.WriteString(" id=")
	b.WriteString(e.ID)
	b.WriteString(" action=")
	b.WriteString(quoteValue(e.Action))
	if e.VMID != "" {
		b.WriteString(" vmid=")
		b.WriteString(e.VMID)
	}

	e.formatTypeSpecificFields(&b)

	return b.String()
}

// formatTypeSpecificFields appends type-specific key=value pairs to the builder.
func (e *Event) formatTypeSpecificFields(b *strings.Builder) {
	switch e.Type {
	case EventReject:
		writeOptionalField(b, "reason", e.Reason)
	case EventComplete:
		writeOptionalField(b, "cmd", e.Cmd)
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	case EventFail:
		writeOptionalField(b, "cmd", e.Cmd)
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
		writeOptionalField(b, "reason", e.Reason)
	case EventTimeout:
		writeOptionalField(b, "cmd", e.Cmd)
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	}
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
// Values are always quoted for consistency and to handle spaces/special chars.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Log writes an event to the audit log.
// A nil Logger discards events.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogRequest logs a REQUEST event.
func (l *Logger) LogRequest(id, action string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventRequest,
		ID:        id,
		Action:    action,
	})
}

// LogReject logs a REJECT event for a request refused before execution.
func (l *Logger) LogReject(id, action, vmid, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventReject,
		ID:        id,
		Action:    action,
		VMID:      vmid,
		Reason:    reason,
	})
}

// LogComplete logs a COMPLETE event.
func (l *Logger) LogComplete(id, action, vmid, cmd string, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventComplete,
		ID:        id,
		Action:    action,
		VMID:      vmid,
		Cmd:       cmd,
		Duration:  duration,
	})
}

// LogFail logs a FAIL event for a command that ran and failed.
func (l *Logger) LogFail(id, action, vmid, cmd string, exitCode int, reason string, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventFail,
		ID:        id,
		Action:    action,
		VMID:      vmid,
		Cmd:       cmd,
		ExitCode:  exitCode,
		Reason:    reason,
		Duration:  duration,
	})
}

// LogTimeout logs a TIMEOUT event.
func (l *Logger) LogTimeout(id, action, vmid, cmd string, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventTimeout,
		ID:        id,
		Action:    action,
		VMID:      vmid,
		Cmd:       cmd,
		Duration:  duration,
	})
}
