package session

import "errors"

// ErrInvalidSessionState reports an operation against a missing or
// terminal session, or an exercise that does not belong to the session's
// lesson. These are programming errors and fail fast; a silent no-op here
// would corrupt the aggregate totals.
var ErrInvalidSessionState = errors.New("invalid session state")

// ErrStoreUnavailable reports a persistence read the engine cannot proceed
// without. The in-memory session is left untouched; the caller may retry.
var ErrStoreUnavailable = errors.New("store unavailable")
