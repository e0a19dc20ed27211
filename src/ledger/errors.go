package ledger

import "errors"

var (
	// ErrNotFound is returned when a package, report, receipt or preimage
	// does not exist. An empty queue is not an error, see Store.ClaimNextPending.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCoordinator is returned by ProcessNext when the coordinator
	// has no store wired in
	ErrInvalidCoordinator = errors.New("coordinator is not configured")

	// ErrQuorumNotReached is returned when fewer attestors than the engine
	// threshold produced a vote
	ErrQuorumNotReached = errors.New("attestation quorum not reached")
)

// ValidationError reports input that failed structural checks before any row
// was written
type ValidationError string

func (self ValidationError) Error() string {
	return string(self)
}
