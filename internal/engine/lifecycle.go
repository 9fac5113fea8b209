package engine

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// FatalErrorHandler is invoked for conditions the core deems unrecoverable
// (violated invariant, unreachable-code guard). After it returns the process
// is aborted (§4.8).
type FatalErrorHandler func(msg string)

// globalLogger is one framework-wide logger registration (§4.6, §9
// "Framework-wide loggers and init-count are process-wide state"). Grounded
// on the ground-truth cp_add_logger(logger, user_data, min_severity,
// ctx_rule): a logger registered once observes every context's log
// records, unless ctxFilter pins it to one context.
type globalLogger struct {
	id       uuid.UUID
	fn       LogListener
	minLevel Severity
	// ctxFilter, when non-nil, restricts delivery to records logged by
	// that one Engine; nil means every context.
	ctxFilter *Engine
}

var (
	lifecycleMu   sync.Mutex
	initCount     int
	fatalHandler  FatalErrorHandler
	allEngines    = make(map[*Engine]struct{})
	globalLoggers []globalLogger
)

// AddLogger registers a framework-wide logger (§4.6, §6). Unlike
// Engine.AddLogListener, which only observes one context, a logger added
// here is not scoped to any context that exists yet, or ever will, unless
// ctxFilter pins it to one: pass nil to observe every context's log
// records. It is delivered alongside a context's own AddLogListener
// registrations, not in place of them.
func AddLogger(fn LogListener, minLevel Severity, ctxFilter *Engine) uuid.UUID {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	id := uuid.New()
	globalLoggers = append(globalLoggers, globalLogger{id: id, fn: fn, minLevel: minLevel, ctxFilter: ctxFilter})
	return id
}

// RemoveLogger removes a previously registered framework-wide logger.
func RemoveLogger(id uuid.UUID) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	for i, l := range globalLoggers {
		if l.id == id {
			globalLoggers = append(globalLoggers[:i], globalLoggers[i+1:]...)
			return
		}
	}
}

// anyGlobalLoggerWants reports whether some registered framework-wide
// logger's minLevel admits sev, so Engine.logf can skip formatting a
// message nothing at all — neither the context's own bus nor any global
// logger — wants.
func anyGlobalLoggerWants(sev Severity) bool {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	for _, l := range globalLoggers {
		if sev >= l.minLevel {
			return true
		}
	}
	return false
}

// dispatchGlobalLog delivers rec, logged by src, to every framework-wide
// logger whose ctxFilter admits src and whose minLevel admits rec. A
// panicking listener is recovered and does not stop delivery to the rest.
func dispatchGlobalLog(src *Engine, rec LogRecord) {
	lifecycleMu.Lock()
	listeners := make([]globalLogger, len(globalLoggers))
	copy(listeners, globalLoggers)
	lifecycleMu.Unlock()

	for _, l := range listeners {
		if l.ctxFilter != nil && l.ctxFilter != src {
			continue
		}
		if rec.Severity < l.minLevel {
			continue
		}
		func() {
			defer func() { recover() }()
			l.fn(rec)
		}()
	}
}

// Init is reference-counted and idempotent: it may be called multiple
// times; the Nth Destroy actually tears down (§4.8).
func Init() {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	initCount++
}

// Destroy decrements the init reference count; when it reaches zero every
// live context is destroyed (which uninstalls everything in it) and the
// framework reports any descriptor still pinned by outstanding host
// handles as leaked.
func Destroy() {
	lifecycleMu.Lock()
	if initCount == 0 {
		lifecycleMu.Unlock()
		return
	}
	initCount--
	if initCount > 0 {
		lifecycleMu.Unlock()
		return
	}
	engines := make([]*Engine, 0, len(allEngines))
	for eng := range allEngines {
		engines = append(engines, eng)
	}
	allEngines = make(map[*Engine]struct{})
	lifecycleMu.Unlock()

	for _, eng := range engines {
		if err := eng.Destroy(nil); err != nil { //nolint:staticcheck // nil context is fine: Destroy never blocks on it today
			// A context mid-callback when the process tears down can't be
			// destroyed safely; it is simply left for its own Destroy call
			// to finish rejecting reentrant teardown.
			eng.logf(SeverityWarning, "engine", "skipped destroying a context during process-wide shutdown: %v", err)
		}
	}
}

func registerEngine(e *Engine) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	allEngines[e] = struct{}{}
}

func unregisterEngine(e *Engine) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	delete(allEngines, e)
}

// SetFatalErrorHandler installs the process-wide fatal-error handler.
func SetFatalErrorHandler(h FatalErrorHandler) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	fatalHandler = h
}

// Fatal reports an unrecoverable internal condition. It invokes the
// installed handler, if any, then aborts the process.
func Fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	lifecycleMu.Lock()
	h := fatalHandler
	lifecycleMu.Unlock()
	if h != nil {
		h(msg)
	}
	fmt.Fprintln(os.Stderr, "pluffgo: fatal:", msg)
	os.Exit(1)
}

// ImplementationInfo describes this build of the framework (§6).
type ImplementationInfo struct {
	ReleaseVersion string
	APIVersion     int
	APIRevision    int
	APIAge         int
	HostTriple     string
	ThreadingModel string
}

// GetImplementationInfo returns static build/runtime identification.
func GetImplementationInfo() ImplementationInfo {
	return ImplementationInfo{
		ReleaseVersion: "1.0.0",
		APIVersion:     1,
		APIRevision:    0,
		APIAge:         0,
		HostTriple:     runtime.GOARCH + "-" + runtime.GOOS,
		ThreadingModel: "shared-memory, per-context re-entrant lock",
	}
}
