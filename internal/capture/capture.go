package capture

import (
	"bufio"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Append after Close
var ErrClosed = errors.New("capture: log closed")

type fsyncStrategy int

const (
	fsyncAlways fsyncStrategy = iota + 1
	fsyncEverySec
	fsyncNo
)

// Log is an append-only file of RESP frames. Frames are encoded by the caller
// and written by a background goroutine
type Log struct {
	file     *os.File
	writer   *bufio.Writer
	filename string
	strategy fsyncStrategy

	frames chan []byte

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	logger *zap.Logger
}

// Open opens (or creates) filename for appending and starts the background writer
func Open(filename string, strategyStr string, logger *zap.Logger) (*Log, error) {
	// open file in Append mode, Create if not exists
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &Log{
		file:     f,
		writer:   bufio.NewWriter(f),
		filename: filename,
		strategy: parseStrategy(strategyStr),
		frames:   make(chan []byte, 10000), // buffer for burst writes
		logger:   logger,
	}

	l.wg.Add(1)
	go l.listen()

	return l, nil
}

// Filename returns the path of the log file
func (l *Log) Filename() string {
	return l.filename
}

// Append queues one encoded frame. It blocks while the queue is full. The
// frame must not be modified after the call
func (l *Log) Append(frame []byte) error {
	if len(frame) == 0 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrClosed
	}

	l.frames <- frame
	return nil
}

func (l *Log) listen() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case p, ok := <-l.frames:
			if !ok {
				l.flush()
				l.sync()
				return
			}
			if _, err := l.writer.Write(p); err != nil {
				l.logger.Error("capture write error", zap.Error(err))
				continue
			}

			if l.strategy == fsyncAlways {
				l.flush()
				l.sync()
			}

		case <-ticker.C:
			switch l.strategy {
			case fsyncEverySec:
				l.flush()
				l.sync()
			case fsyncNo:
				l.flush()
			}
		}
	}
}

func (l *Log) flush() {
	if err := l.writer.Flush(); err != nil {
		l.logger.Error("capture flush error", zap.Error(err))
	}
}

func (l *Log) sync() {
	if err := l.file.Sync(); err != nil {
		l.logger.Error("capture fsync error", zap.Error(err))
	}
}

// Close drains queued frames, flushes them to disk and closes the file
func (l *Log) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.frames)
	l.mu.Unlock()

	l.wg.Wait() // wait for background routine to finish last flush
	return l.file.Close()
}

func parseStrategy(s string) fsyncStrategy {
	switch s {
	case "always":
		return fsyncAlways
	case "no":
		return fsyncNo
	default:
		return fsyncEverySec
	}
}
