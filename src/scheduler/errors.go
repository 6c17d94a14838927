package scheduler

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSelection matches every *InvalidSelection
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNotReady         = errors.New("catalog not loaded")
)

// InvalidSelection is returned when a group or sample id does not exist,
// or the sample is not one the group offers. Nothing changes state when it
// is returned.
type InvalidSelection struct {
	Group  string
	Sample string
	Reason string
}

func (e *InvalidSelection) Error() string {
	if e.Sample == "" {
		return fmt.Sprintf("invalid selection for group %q: %s", e.Group, e.Reason)
	}
	return fmt.Sprintf("invalid selection %q for group %q: %s", e.Sample, e.Group, e.Reason)
}

func (e *InvalidSelection) Is(target error) bool { return target == ErrInvalidSelection }
