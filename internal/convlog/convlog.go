// Package convlog writes chat conversations as newline-delimited JSON.
//
// Events are queued and written by a single background goroutine, one file
// per session plus an optional combined file. Session files are opened for
// each event and closed right after, so ended sessions hold no descriptors.
// A full queue drops events rather than blocking the chat.
package convlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ashureev/agentchat/internal/session"
)

// Event types.
const (
	EventUserMessage    = "chat_user_message"
	EventAIMessage      = "chat_ai_message"
	EventFieldRequest   = "field_request"
	EventFieldResponse  = "field_response"
	EventTransportError = "transport_error"
)

// Directions.
const (
	Inbound  = "inbound"
	Outbound = "outbound"
)

// Config controls conversation logging.
type Config struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Event is one line of a conversation log.
type Event struct {
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
	Channel    string         `json:"channel"`
	Direction  string         `json:"direction"`
	EventType  string         `json:"event_type"`
	ContentRaw string         `json:"content_raw"`
	Content    string         `json:"content"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Logger records conversation events.
type Logger interface {
	Log(Event)
	Close() error
}

type nopLogger struct{}

func (nopLogger) Log(Event)    {}
func (nopLogger) Close() error { return nil }

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type fileLogger struct {
	cfg    Config
	logger *slog.Logger
	queue  chan Event
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool

	global   *os.File
	closeErr error
}

// New creates a Logger for cfg. A disabled config yields Nop.
func New(cfg Config, logger *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, errors.New("conversation log dir is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	l := &fileLogger{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	if cfg.GlobalEnabled && cfg.GlobalPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.GlobalPath), 0o750); err != nil {
			return nil, fmt.Errorf("create global conversation log dir: %w", err)
		}
		f, err := openAppend(cfg.GlobalPath)
		if err != nil {
			return nil, fmt.Errorf("open global conversation log: %w", err)
		}
		l.global = f
	}

	go l.run()
	return l, nil
}

// Log enqueues e. Content is derived from ContentRaw when empty.
func (l *fileLogger) Log(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Content == "" {
		e.Content = CleanForReadability(e.ContentRaw)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		l.logger.Warn("Conversation log queue full, dropping event",
			"session_id", e.SessionID,
			"event_type", e.EventType)
	}
}

// Close flushes queued events and closes the global file. It returns any
// error from closing it.
func (l *fileLogger) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
	})
	<-l.done
	return l.closeErr
}

func (l *fileLogger) run() {
	defer close(l.done)
	defer func() {
		if l.global != nil {
			l.closeErr = l.global.Close()
		}
	}()

	for e := range l.queue {
		line, err := json.Marshal(e)
		if err != nil {
			l.logger.Error("Failed to encode conversation event", "error", err)
			continue
		}
		line = append(line, '\n')

		if err := l.appendSession(e.SessionID, line); err != nil {
			l.logger.Error("Failed to write conversation log", "session_id", e.SessionID, "error", err)
		}

		if l.global != nil {
			if _, err := l.global.Write(line); err != nil {
				l.logger.Error("Failed to write global conversation log", "error", err)
			}
		}
	}
}

// appendSession writes line to the session's file and closes it again.
func (l *fileLogger) appendSession(sessionID string, line []byte) error {
	name := session.Sanitize(sessionID)
	if name == "" {
		name = "unknown"
	}
	f, err := openAppend(filepath.Join(l.cfg.Dir, name+".ndjson"))
	if err != nil {
		return err
	}
	_, writeErr := f.Write(line)
	return errors.Join(writeErr, f.Close())
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*(\x07|\x1b\\)`)

// CleanForReadability strips ANSI escape sequences and control characters,
// keeping newlines and tabs.
func CleanForReadability(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
