package nodeset

import (
	"errors"
	"fmt"
)

// ErrDomain is matched (via errors.Is) by every *DomainError.
var ErrDomain = errors.New("nodeset: id outside universe")

// DomainError reports a member id that does not fit the set's universe.
type DomainError struct {
	ID       uint32
	Universe uint32
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("nodeset: id %d exceeds universe size %d", e.ID, e.Universe)
}

// Is lets errors.Is(err, ErrDomain) match any DomainError.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
