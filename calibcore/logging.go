package calibcore

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger is the package-wide structured logger: a plain text handler to
// stderr, Info level by default. ccdb and rcdb log through it at their
// top-level Fetch/Request/query-planner entry points — Debug for the
// routine entry/exit of a call, Error for a call that failed — so a
// caller who keeps the default sees only the Error lines, and one who
// replaces Logger with a Debug-level logger also gets each call's entry
// and exit lines, tagged with the call's trace id.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// NewTraceID returns a short id tagging one top-level invocation's log
// lines for correlation, mirroring the
// teacher's use of uuid.New() for session and message ids.
func NewTraceID() string {
	return uuid.NewString()[:8]
}
