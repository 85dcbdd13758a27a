package tracing

// Span attribute keys.
const (
	AttrSessionID    = "session.id"
	AttrTransitionID = "transition.id"
	AttrViewModel    = "view.model"
	AttrViewID       = "view.id"
	AttrViewPath     = "view.path"
	AttrBindingMode  = "binding.mode"
	AttrWindowID     = "window.id"
	AttrRecovery     = "navigation.recovery"
	AttrAttempt      = "navigation.attempt"
	AttrCrashReason  = "crash.reason"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanNavigate = "navigation.transition"
	SpanBind     = "binding.bind"
	SpanDisplay  = "navigation.display"
	SpanRecover  = "navigation.recover"
)

// Span event names.
const (
	EventWindowCreated   = "window.created"
	EventLoadEnd         = "window.load_end"
	EventBound           = "binding.bound"
	EventSwapped         = "navigation.swapped"
	EventWindowCrashed   = "window.crashed"
	EventPendingCrashed  = "window.pending_crashed"
	EventRecoveryDenied  = "navigation.recovery_denied"
	EventScriptFailed    = "script.failed"
	EventTransitionError = "navigation.failed"
)
