package allocation

import "errors"

// Sentinel kinds for allocation form errors. The first three are local
// validation failures caught before any network call.
var (
	ErrIncomplete      = errors.New("allocation draft incomplete")
	ErrZeroPoints      = errors.New("points must be non-zero")
	ErrSubmitInFlight  = errors.New("submission already in flight")
	ErrNotInRoster     = errors.New("player not in the selected team's roster")
	ErrUnknownActivity = errors.New("unknown activity")
)
