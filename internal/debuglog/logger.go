package debuglog

import (
	"fmt"
	"os"
	"sync"
)

const queueSize = 2048

type logger struct {
	once sync.Once
	ch   chan string
}

var global logger

func enabled() bool {
	return os.Getenv("CLIPPER_DEBUG") == "1"
}

func (l *logger) start() {
	l.once.Do(func() {
		l.ch = make(chan string, queueSize)
		go func() {
			for msg := range l.ch {
				_, _ = os.Stderr.WriteString(msg)
			}
		}()
	})
}

func Logf(format string, args ...any) {
	msg := fmt.Sprintf(format+"\n", args...)
	if !enabled() {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	global.start()
	select {
	case global.ch <- msg:
	default:
		// Drop when saturated so connection loops never block on logging.
	}
}

func Debugf(format string, args ...any) {
	if !enabled() {
		return
	}
	Logf(format, args...)
}
