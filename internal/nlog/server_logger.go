/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package nlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logger is something that can print, using Logf, a format string
type Logger interface {
	Logf(format string, v ...any)
}

// subsystemLogger is a logger that handles only one file out of all that are opened by its logger
type subsystemLogger struct {
	name   string
	logger *ServerLogger
}

// Logf for a subsystem logger is just a wrap for the Logf of its internal logger, giving its only subsystem name
func (s *subsystemLogger) Logf(format string, v ...any) {
	s.logger.Logf(s.name, format, v...)
}

// logEntry is an helper struct that can be used to send a couple (subsystem, formatted string) onto the log channel
type logEntry struct {
	name      string
	formatted string
}

// ServerLogger is an (almost) powerful logger that can write to multiple log files from one single struct.
// Each subsystem of the server (http, hub, calls, ...) gets its own file under the log directory.
// It's safe to share amongst goroutines since it has an internal lock
type ServerLogger struct {
	dir string // Directory the log files are created in

	fileMapper map[string]*os.File    // Maps a subsystem to an OS file (used only to be able to deallocate it later)
	logMapper  map[string]*log.Logger // Maps a subsystem to the corresponding logger

	lock           sync.RWMutex
	currentLogFunc func(*log.Logger, string, ...any) // Current logging function (alternating between defaultLogf and nilLogf)

	inbox chan logEntry // Log channel, formatted strings are sent here instead of directly writing to files
}

// NewServerLogger creates and returns a ServerLogger writing inside dir, with the given logging flag
// When successful, error is nil
func NewServerLogger(dir string, logging bool) (*ServerLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	s := &ServerLogger{
		dir:            dir,
		fileMapper:     make(map[string]*os.File),
		logMapper:      make(map[string]*log.Logger),
		currentLogFunc: nilLogf,
		inbox:          make(chan logEntry, 600),
	}

	if logging {
		s.currentLogFunc = defaultLogf
	}

	return s, nil
}

// RegisterSubsystem registers a new subsystem, returning a Logger that can write to the file <name>.log.
// If successful, error is nil
func (s *ServerLogger) RegisterSubsystem(name string) (Logger, error) {
	file, err := os.OpenFile(filepath.Join(s.dir, name+".log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.logMapper[name] = log.New(file, fmt.Sprintf("[chatd %s]: ", name), log.Ldate|log.Ltime)
	s.fileMapper[name] = file
	return &subsystemLogger{name, s}, nil
}

// GetSubsystemLogger retrieves a subsystem logger, if previously registered.
// If successful, error is nil
func (s *ServerLogger) GetSubsystemLogger(name string) (Logger, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.logMapper[name]; !ok {
		return nil, fmt.Errorf("The subsystem was not registered")
	}
	return &subsystemLogger{name, s}, nil
}

// EnableLogging enables the logging done by this logger
func (s *ServerLogger) EnableLogging() {
	s.lock.Lock()
	s.currentLogFunc = defaultLogf
	s.lock.Unlock()
}

// DisableLogging disables the logging done by this logger
func (s *ServerLogger) DisableLogging() {
	s.lock.Lock()
	s.currentLogFunc = nilLogf
	s.lock.Unlock()
}

// Logf formats a string using format and v, and appends it to the logging channel, alongside the subsystem it will be written to
func (s *ServerLogger) Logf(name, format string, v ...any) {
	s.inbox <- logEntry{name, fmt.Sprintf(format, v...)}
}

// Run waits either on the log channel or ctx.Done()
// When ctx.Done(), the caller has shut down and we deallocate resources
// When a message arrives on the log channel, we write it accordingly
func (s *ServerLogger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case msg := <-s.inbox:
			s.actualWrite(msg.name, msg.formatted)
		}
	}
}

// actualWrite is the function that writes the formatted string in the subsystem's file
// When successful, error is nil
func (s *ServerLogger) actualWrite(name, formatted string) error {
	s.lock.Lock()
	logFunc := s.currentLogFunc
	logger, ok := s.logMapper[name]
	s.lock.Unlock()

	if !ok {
		return fmt.Errorf("Logger is not setup for this subsystem")
	}
	if logFunc != nil {
		logFunc(logger, formatted)
	}
	return nil
}

// CloseAll closes all the open files that the loggers are using
func (s *ServerLogger) CloseAll() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, file := range s.fileMapper {
		file.Sync()
		file.Close()
	}
	clear(s.fileMapper)
	clear(s.logMapper)
}

// defaultLogf is a log function that writes to a logger l
func defaultLogf(l *log.Logger, format string, a ...any) {
	l.Printf(format, a...)
}

// nilLogf is a log function that does nothing, which gets called when logging is disabled
func nilLogf(*log.Logger, string, ...any) {}
