package log

// MultiLogger fans each event out to several loggers. fc-identify uses
// it to write a trace file and echo protocol events to the console in
// the same session.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines the given loggers into one.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards the event to every combined logger, in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
