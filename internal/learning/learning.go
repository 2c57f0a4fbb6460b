// Package learning holds the coordinators that keep multi-record invariants:
// one enrollment and one progress record per (user, course), a student
// counter that moves with enrollments, and course ratings that always
// reflect the full review set. Each coordinator is handed a repo.Store and
// runs its writes through Store.WithinTx.
package learning

import (
	"errors"
	"log/slog"
)

// ErrInvalidInput wraps validation failures that binding tags cannot express.
var ErrInvalidInput = errors.New("invalid input")

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
