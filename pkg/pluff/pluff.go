// Package pluff is the host-facing embedding API for the plug-in framework
// (§6). It is a thin facade over internal/engine, which owns the actual
// lifecycle algorithms (C2-C8); this package only adapts engine's types to a
// stable public surface and adds the process-wide init/destroy/fatal-handler
// bookkeeping described in spec.md §4.8.
package pluff

import (
	"context"

	"github.com/google/uuid"
	"github.com/pluffgo/pluffgo/internal/engine"
)

type (
	Version          = engine.Version
	MatchRule        = engine.MatchRule
	Import           = engine.Import
	ExtensionPoint    = engine.ExtensionPoint
	Extension        = engine.Extension
	ConfigElement    = engine.ConfigElement
	Descriptor       = engine.Descriptor
	PluginState      = engine.PluginState
	PluginEvent      = engine.PluginEvent
	LogRecord        = engine.LogRecord
	Severity         = engine.Severity
	EventListener    = engine.EventListener
	LogListener      = engine.LogListener
	ScanFlags        = engine.ScanFlags
	ScanResult       = engine.ScanResult
	Info             = engine.Info
	RuntimeLoader      = engine.RuntimeLoader
	RuntimeHandle      = engine.RuntimeHandle
	DescriptorParser   = engine.DescriptorParser
	ExtensionValidator = engine.ExtensionValidator
	StartFunc        = engine.StartFunc
	StopFunc         = engine.StopFunc
	ImplementationInfo = engine.ImplementationInfo
	FatalErrorHandler   = engine.FatalErrorHandler
)

const (
	MatchNone           = engine.MatchNone
	MatchPerfect        = engine.MatchPerfect
	MatchEquivalent     = engine.MatchEquivalent
	MatchCompatible     = engine.MatchCompatible
	MatchGreaterOrEqual = engine.MatchGreaterOrEqual

	StateUninstalled = engine.StateUninstalled
	StateInstalled   = engine.StateInstalled
	StateResolved    = engine.StateResolved
	StateStarting    = engine.StateStarting
	StateActive      = engine.StateActive
	StateStopping    = engine.StateStopping

	SeverityDebug   = engine.SeverityDebug
	SeverityInfo    = engine.SeverityInfo
	SeverityWarning = engine.SeverityWarning
	SeverityError   = engine.SeverityError
	SeverityFatal   = engine.SeverityFatal

	ScanUpgrade          = engine.ScanUpgrade
	ScanStopAllOnUpgrade = engine.ScanStopAllOnUpgrade
	ScanStopAllOnInstall = engine.ScanStopAllOnInstall
	ScanRestartActive    = engine.ScanRestartActive

	MaxIdentifierBytes = engine.MaxIdentifierBytes

	KindResourceExhaustion = engine.KindResourceExhaustion
	KindUnknown            = engine.KindUnknown
	KindIO                 = engine.KindIO
	KindMalformed          = engine.KindMalformed
	KindConflict           = engine.KindConflict
	KindDependency         = engine.KindDependency
	KindRuntime            = engine.KindRuntime
	KindInvalidInvocation  = engine.KindInvalidInvocation
)

// ParseVersion parses a dotted 1-4 component version string.
func ParseVersion(s string) (Version, error) { return engine.ParseVersion(s) }

// NewDescriptor validates and wraps a parsed descriptor value.
func NewDescriptor(d Descriptor) (*Descriptor, error) { return engine.NewDescriptor(d) }

// GlobalExtensionPointID builds descriptor-id "." local-id.
func GlobalExtensionPointID(descriptorID, localID string) string {
	return engine.GlobalExtensionPointID(descriptorID, localID)
}

// ErrorKind extracts the error-kind code from err, if err came from this
// framework.
func ErrorKind(err error) (string, bool) { return engine.Kind(err) }

// Init is reference-counted and idempotent (§4.8).
func Init() { engine.Init() }

// Destroy decrements the init reference count, tearing everything down when
// it reaches zero.
func Destroy() { engine.Destroy() }

// SetFatalErrorHandler installs the process-wide fatal-error handler.
func SetFatalErrorHandler(h FatalErrorHandler) { engine.SetFatalErrorHandler(h) }

// AddLogger registers a framework-wide logger (§4.6, §9): unlike
// Context.AddLogListener, it is not scoped to one context. ctx, if
// non-nil, restricts delivery to log records produced by that context;
// nil observes every context, present and future.
func AddLogger(fn LogListener, minLevel Severity, ctx *Context) uuid.UUID {
	var filter *engine.Engine
	if ctx != nil {
		filter = ctx.eng
	}
	return engine.AddLogger(fn, minLevel, filter)
}

// RemoveLogger removes a previously registered framework-wide logger.
func RemoveLogger(id uuid.UUID) { engine.RemoveLogger(id) }

// GetImplementationInfo returns static build/runtime identification.
func GetImplementationInfo() ImplementationInfo { return engine.GetImplementationInfo() }

// Context is an isolated registry of plug-ins, extension points and
// extensions with its own lock (C3).
type Context struct {
	eng *engine.Engine
}

// NewContext creates a context. loader, parser and validator may all be
// nil; a nil loader makes any plug-in declaring a runtime library fail to
// resolve, a nil parser makes Scan fail with an IO error, and a nil
// validator skips extension-config schema checks on Install entirely.
func NewContext(loader RuntimeLoader, parser DescriptorParser, validator ExtensionValidator) *Context {
	return &Context{eng: engine.New(engine.Options{Loader: loader, Parser: parser, Validator: validator})}
}

func (c *Context) AddDirectory(path string)    { c.eng.AddDirectory(path) }
func (c *Context) RemoveDirectory(path string) { c.eng.RemoveDirectory(path) }
func (c *Context) Directories() []string       { return c.eng.Directories() }

// Destroy uninstalls everything in the context and releases its resources.
// It rejects with InvalidInvocation if called from inside one of the
// context's own start/stop callbacks (§5, §9).
func (c *Context) Destroy(ctx context.Context) error { return c.eng.Destroy(ctx) }

// Scan walks the configured directories and installs/upgrades plug-ins found
// there, per flags (§6).
func (c *Context) Scan(ctx context.Context, flags ScanFlags) (ScanResult, error) {
	return c.eng.Scan(ctx, flags)
}

// Install registers a parsed descriptor with the context (§4.5).
func (c *Context) Install(d *Descriptor) (Info, error) { return c.eng.Install(d) }

// Resolve brings id (and its transitive imports) to state RESOLVED (§4.2).
func (c *Context) Resolve(ctx context.Context, id string) error { return c.eng.Resolve(ctx, id) }

// Start brings id to state ACTIVE, starting its dependencies first (§4.3).
func (c *Context) Start(ctx context.Context, id string) error { return c.eng.Start(ctx, id) }

// Stop brings id down from ACTIVE, stopping its dependents first (§4.3).
func (c *Context) Stop(ctx context.Context, id string) error { return c.eng.Stop(ctx, id) }

// StopAll stops every active plug-in, dependents before dependencies.
func (c *Context) StopAll(ctx context.Context) { c.eng.StopAll(ctx) }

// Uninstall removes id from the context entirely (§4.4).
func (c *Context) Uninstall(ctx context.Context, id string) error {
	return c.eng.Uninstall(ctx, id)
}

// UninstallAll stops and uninstalls every plug-in in the context.
func (c *Context) UninstallAll(ctx context.Context) { c.eng.UninstallAll(ctx) }

// State reports the current state of id, and whether it is registered.
func (c *Context) State(id string) (PluginState, bool) { return c.eng.State(id) }

// GetInfo returns a ref-counted snapshot of one plug-in (C9).
func (c *Context) GetInfo(id string) (Info, bool) { return c.eng.GetInfo(id) }

// ListInfo returns a ref-counted snapshot of every registered plug-in.
func (c *Context) ListInfo() []Info { return c.eng.ListInfo() }

// ReleaseInfo releases the use-count share held by info.
func (c *Context) ReleaseInfo(info Info) { c.eng.ReleaseInfo(info) }

// StartedPlugins returns the ids currently ACTIVE, in start order.
func (c *Context) StartedPlugins() []string { return c.eng.StartedPlugins() }

// AddEventListener registers a plug-in state-change listener (§4.6).
func (c *Context) AddEventListener(fn EventListener) uuid.UUID {
	return c.eng.AddEventListener(fn)
}

func (c *Context) RemoveEventListener(id uuid.UUID) { c.eng.RemoveEventListener(id) }

// AddLogListener registers a logger with a minimum severity filter (§4.6).
func (c *Context) AddLogListener(fn LogListener, minLevel Severity) uuid.UUID {
	return c.eng.AddLogListener(fn, minLevel)
}

func (c *Context) RemoveLogListener(id uuid.UUID) { c.eng.RemoveLogListener(id) }
