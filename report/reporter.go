package report

import (
	"fmt"
	"sync"
)

// Reporter is responsible for reporting process-level messages (workspace
// configuration problems, internal compiler errors, fatal startup errors) to
// the user. It respects the configured log level and is synchronized: its
// methods can be called safely from multiple goroutines, matching the
// teacher's `report.Reporter` / `logging.Logger` (a single mutex guarding
// shared state, no fine-grained locks — spec.md §5's "software transactional
// primitives ... no fine-grained locks" shows up here too).
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// Indicates whether or not an error has been detected.
	isErr bool
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all messages (default).
)

// rep is the global reporter instance used by package-level helpers such as
// RecoverPass. It is optional: a worker embedded in a larger program may
// never call InitReporter, in which case messages fall back to stderr.
var rep *Reporter

// InitReporter initializes the global reporter to the given log level. If
// the reporter has already been initialized, this function does nothing.
func InitReporter(logLevel int) {
	if rep == nil {
		rep = &Reporter{m: &sync.Mutex{}, logLevel: logLevel}
	}
}

// NewReporter creates a standalone reporter, for callers that want their own
// instance rather than the process-wide global (e.g. tests).
func NewReporter(logLevel int) *Reporter {
	return &Reporter{m: &sync.Mutex{}, logLevel: logLevel}
}

// ReportConfigError reports an error loading workspace configuration.
func (r *Reporter) ReportConfigError(kind, msg string) {
	if r.logLevel > LogLevelSilent {
		r.m.Lock()
		defer r.m.Unlock()

		r.isErr = true
		displayConfigError(kind, msg)
	}
}

// ReportFatal reports a fatal, unrecoverable startup error. Unlike the
// teacher's batch-compiler equivalent, this does not call os.Exit: a
// long-running worker process must let its caller (cmd/chaiworker's main,
// or the embedding transport) decide whether to exit.
func (r *Reporter) ReportFatal(message string, args ...interface{}) {
	if r.logLevel > LogLevelSilent {
		r.m.Lock()
		defer r.m.Unlock()

		r.isErr = true
		displayFatal(fmt.Sprintf(message, args...))
	}
}

// AnyErrors returns whether this reporter has reported any errors.
func (r *Reporter) AnyErrors() bool {
	r.m.Lock()
	defer r.m.Unlock()
	return r.isErr
}

// reportICE displays an internal-error banner through the global reporter if
// one has been initialized, falling back to stderr otherwise.
func reportICE(message string) {
	if rep != nil {
		rep.m.Lock()
		defer rep.m.Unlock()
	}

	displayICE(message)
}
