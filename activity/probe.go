package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"

	"github.com/sirupsen/logrus"
)

// DefaultProbeTimeout bounds a single window read. Some window managers
// block indefinitely without a display.
const DefaultProbeTimeout = 2 * time.Second

// Reader reads the focused window from the platform. It may block or fail.
type Reader interface {
	ActiveWindow(ctx context.Context) (app, title string, err error)
}

// ReaderFunc adapts a plain function to Reader
type ReaderFunc func(ctx context.Context) (string, string, error)

func (f ReaderFunc) ActiveWindow(ctx context.Context) (string, string, error) {
	return f(ctx)
}

// Prober is what the sampler and request handlers depend on
type Prober interface {
	Probe(ctx context.Context) (app, title string)
}

// WindowProbe puts a hard deadline on a Reader and never reports an error:
// anything that goes wrong becomes ("Unknown", "Unknown").
type WindowProbe struct {
	reader  Reader
	timeout time.Duration
}

func NewWindowProbe(reader Reader, timeout time.Duration) *WindowProbe {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &WindowProbe{reader: reader, timeout: timeout}
}

type probeResult struct {
	app, title string
	err        error
}

func (p *WindowProbe) Probe(ctx context.Context) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// buffered so a reader that ignores ctx can still finish and exit
	done := make(chan probeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- probeResult{err: fmt.Errorf("window reader panicked: %v", r)}
			}
		}()
		app, title, err := p.reader.ActiveWindow(ctx)
		done <- probeResult{app: app, title: title, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			config.Logger.WithError(res.err).Debug("Window probe failed")
			return types.UnknownWindow, types.UnknownWindow
		}
		return orUnknown(res.app), orUnknown(res.title)
	case <-ctx.Done():
		config.Logger.WithFields(logrus.Fields{"timeout": p.timeout}).Debug("Window probe timed out")
		return types.UnknownWindow, types.UnknownWindow
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.UnknownWindow
	}
	return s
}
