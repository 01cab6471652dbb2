package explore

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fjglira/specwalk/internal/domain"
)

// signal aborts the current pass after exactly one unvisited block finished.
// It unwinds user code by panicking and is recovered at every block boundary,
// which forwards it unchanged. It never escapes Explore.
type signal struct {
	key    string
	record domain.PathRecord
	entry  bool // the entry point body itself failed
}

func (s *signal) String() string {
	return fmt.Sprintf("explore signal: %s", s.record)
}

// usageError reports misuse of the engine. It is never recorded as a block
// failure and propagates out of Explore.
type usageError struct {
	error
}

// causeOf converts a recovered panic value into an error, keeping existing
// error chains intact.
func causeOf(r any) error {
	switch v := r.(type) {
	case error:
		return v
	case string:
		return errors.New(v)
	default:
		return errors.Errorf("panic: %v", v)
	}
}
