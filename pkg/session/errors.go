package session

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSubmissionPending is returned when an operation would race with the
	// in-flight exchange of the active conversation.
	ErrSubmissionPending = errors.New("a message is already awaiting a reply")
	ErrPersist           = errors.New("history could not be persisted")
	ErrManagerNil        = errors.New("session manager is nil")
)

// PersistError reports a failed write of the history index. It is non-fatal:
// for everything except Delete the in-memory state has already been updated
// and the next successful write catches the store up.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	if e == nil {
		return ErrPersist.Error()
	}
	return fmt.Sprintf("%s (%s): %v", ErrPersist, e.Op, e.Err)
}

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

func (e *PersistError) Unwrap() error { return e.Err }
