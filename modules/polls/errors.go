package polls

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPollClosed          = errors.New("poll is closed")
	ErrNotOwner            = errors.New("only the poll owner may do this")
	ErrAlreadyVoted        = errors.New("already voted in this poll")
	ErrWrongVoteCount      = errors.New("wrong number of book selections")
	ErrBookNotInPoll       = errors.New("book is not part of this poll")
	ErrGroupExists         = errors.New("group already exists")
	ErrResultNotAccessible = errors.New("results are not visible until you vote or the poll closes")

	// ErrDefaultGroupMissing means the store holds zero or multiple
	// ownerless groups after bootstrap. That is data corruption; the
	// process must not keep serving.
	ErrDefaultGroupMissing = errors.New("default group missing or duplicated")
)
