package viewstate

import "time"

// SelectorLogEvent describes a selector evaluation attempt for logging.
type SelectorLogEvent struct {
	Engine    string
	Expr      string
	Container string
	Scope     string
	Duration  time.Duration
	Err       error
}

// SelectorLogger records selector evaluations.
type SelectorLogger interface {
	LogSelection(SelectorLogEvent)
}

// SelectorLoggerFunc adapts a function to SelectorLogger.
type SelectorLoggerFunc func(SelectorLogEvent)

// LogSelection implements SelectorLogger.
func (f SelectorLoggerFunc) LogSelection(event SelectorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopSelectorLogger struct{}

func (noopSelectorLogger) LogSelection(SelectorLogEvent) {}

// WithSelectorLogger attaches a selector logger to the store.
func WithSelectorLogger(logger SelectorLogger) StoreOption {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.selectorLogger = noopSelectorLogger{}
			return
		}
		cfg.selectorLogger = logger
	}
}
