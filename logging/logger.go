// Package logging provides leveled component loggers for the library.
// Output goes to stderr by default and can be redirected or silenced.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

var levelNames = map[Level]string{
	FATAL:   "fatal",
	ERROR:   "error",
	WARNING: "warn",
	INFO:    "info",
	DEBUG:   "debug",
}

type Record struct {
	Level     Level
	Component string
	Message   string
}

// Logger writes records tagged with a component name.
type Logger struct {
	Component string
}

func NewLogger(component string) *Logger {
	return &Logger{Component: component}
}

func (l *Logger) Print(args ...interface{}) {
	defaultOutput.write(Record{INFO, l.Component, fmt.Sprint(args...)})
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	defaultOutput.write(Record{INFO, l.Component, fmt.Sprintf(msg, args...)})
}

func (l *Logger) Warn(args ...interface{}) {
	defaultOutput.write(Record{WARNING, l.Component, fmt.Sprint(args...)})
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	defaultOutput.write(Record{WARNING, l.Component, fmt.Sprintf(msg, args...)})
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	defaultOutput.write(Record{ERROR, l.Component, fmt.Sprintf(msg, args...)})
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	defaultOutput.write(Record{DEBUG, l.Component, fmt.Sprintf(msg, args...)})
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	defaultOutput.write(Record{FATAL, l.Component, fmt.Sprintf(msg, args...)})
	os.Exit(1)
}

// SetMinLevel drops all records below lvl. The default is INFO.
func SetMinLevel(lvl Level) {
	defaultOutput.mu.Lock()
	defaultOutput.minLevel = lvl
	defaultOutput.mu.Unlock()
}

// SetOutput redirects all log output, e.g. to io.Discard.
func SetOutput(w io.Writer) {
	defaultOutput.mu.Lock()
	defaultOutput.writer = w
	defaultOutput.mu.Unlock()
}

type output struct {
	mu       sync.Mutex
	writer   io.Writer
	minLevel Level
}

func (o *output) write(r Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if r.Level > o.minLevel {
		return
	}
	fmt.Fprintf(o.writer, "[%s] [%s]", time.Now().Format(time.Stamp), levelNames[r.Level])
	if r.Component != "" {
		fmt.Fprintf(o.writer, " [%s]", r.Component)
	}
	fmt.Fprintln(o.writer, " "+r.Message)
}

var defaultOutput = &output{
	writer:   os.Stderr,
	minLevel: INFO,
}
