package engine

import "github.com/samber/oops"

// ErrorKind codes mirror the eight-way taxonomy in spec.md §7. They are
// carried as the oops error code so a host can classify a failure with
// oops.AsOops(err).Code() without string-matching error text.
const (
	KindResourceExhaustion = "RESOURCE_EXHAUSTION"
	KindUnknown            = "UNKNOWN"
	KindIO                 = "IO"
	KindMalformed          = "MALFORMED"
	KindConflict           = "CONFLICT"
	KindDependency         = "DEPENDENCY"
	KindRuntime            = "RUNTIME"
	KindInvalidInvocation  = "INVALID_INVOCATION"
)

func errResourceExhaustion(format string, args ...any) error {
	return oops.Code(KindResourceExhaustion).Errorf(format, args...)
}

func errUnknown(id string) error {
	return oops.Code(KindUnknown).With("id", id).Errorf("no plug-in registered with id %q", id)
}

func errIO(format string, args ...any) error {
	return oops.Code(KindIO).Errorf(format, args...)
}

func errMalformed(id string, format string, args ...any) error {
	return oops.Code(KindMalformed).With("id", id).Errorf(format, args...)
}

func errConflict(format string, args ...any) error {
	return oops.Code(KindConflict).Errorf(format, args...)
}

func errDependency(pluginID string, format string, args ...any) error {
	return oops.Code(KindDependency).With("plugin", pluginID).Errorf(format, args...)
}

func errRuntime(pluginID string, cause error, format string, args ...any) error {
	b := oops.Code(KindRuntime).With("plugin", pluginID)
	if cause != nil {
		return b.Wrapf(cause, format, args...)
	}
	return b.Errorf(format, args...)
}

func errInvalidInvocation(format string, args ...any) error {
	return oops.Code(KindInvalidInvocation).Errorf(format, args...)
}

// Kind extracts the oops error code from err, if err was produced by this
// package. ok is false for plain errors.
func Kind(err error) (string, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "", false
	}
	code, _ := oopsErr.Code().(string)
	return code, true
}
