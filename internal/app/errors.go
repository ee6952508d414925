package app

import (
	"errors"
	"fmt"
)

// ErrConfirmationRequired marks a destructive delete attempted without
// explicit confirmation. Match with errors.Is.
var ErrConfirmationRequired = errors.New("confirmation required")

// ConfirmationRequiredError reports how many objects the refused delete
// would have affected. No side effect has occurred when it is returned.
type ConfirmationRequiredError struct {
	Count int
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %d object(s) would be deleted (re-run with --yes)", e.Count)
}

func (e *ConfirmationRequiredError) Is(target error) bool {
	return target == ErrConfirmationRequired
}
