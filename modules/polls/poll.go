package polls

import (
	"time"

	"github.com/bookclub/bookpoll/modules/auth"
)

// NewPoll returns an open poll with the club defaults. Callers set the
// subject, owner, group, books, and any overrides before persisting.
func NewPoll() *Poll {
	now := time.Now()
	return &Poll{
		State:   StateOpen,
		Begin:   now,
		End:     now.Add(24 * time.Hour),
		Doubles: 2,
	}
}

func (p *Poll) IsOwner(user *auth.User) bool {
	return user != nil && user.ID == p.OwnerID
}

func (p *Poll) IsVoted(user *auth.User) bool {
	if user == nil {
		return false
	}
	for _, v := range p.Votes {
		if v.UserID == user.ID {
			return true
		}
	}
	return false
}

// IsResultAccessible is the sole access rule for viewing results: the
// poll is closed, or the viewer already voted, or the viewer owns it.
func (p *Poll) IsResultAccessible(user *auth.User) bool {
	return p.State == StateClosed || p.IsVoted(user) || p.IsOwner(user)
}

// Voters returns the distinct users who cast at least one vote, in
// insertion order.
func (p *Poll) Voters() []auth.User {
	seen := make(map[uint]bool)
	voters := make([]auth.User, 0)
	for _, v := range p.Votes {
		if seen[v.UserID] {
			continue
		}
		seen[v.UserID] = true
		voters = append(voters, v.User)
	}
	return voters
}

func (p *Poll) hasBook(book *Book) bool {
	if book == nil {
		return false
	}
	for _, b := range p.Books {
		if b.ID == book.ID {
			return true
		}
	}
	return false
}

// CountVotes derives the transient vote count for one book.
func (p *Poll) CountVotes(book *Book) int {
	if !p.hasBook(book) {
		return 0
	}
	count := 0
	for _, v := range p.Votes {
		if v.BookID == book.ID {
			count++
		}
	}
	return count
}

// PopularityRate returns the vote count for the book, the number of
// distinct voters, and votes/voters. With doubles > 1 a voter counts
// toward several books, so the rates in a poll do not sum to 1; that
// matches how the club has always read the number. Zero voters or a
// foreign book yield all zeroes, never a fault.
func (p *Poll) PopularityRate(book *Book) (votes int, voters int, rate float64) {
	if !p.hasBook(book) {
		return 0, 0, 0
	}

	votes = p.CountVotes(book)
	voters = len(p.Voters())
	if voters == 0 {
		return votes, voters, 0
	}
	return votes, voters, float64(votes) / float64(voters)
}

// JudgeWinner returns the book holding a strict plurality of votes, or
// nil when the maximum is shared or no votes exist. Pure: calling it
// never mutates the poll, and repeated calls agree until votes change.
// The result is persisted exactly once, at close time.
func (p *Poll) JudgeWinner() *Book {
	counts := make(map[uint]int)
	for _, v := range p.Votes {
		counts[v.BookID]++
	}

	max := 0
	tied := false
	var leader uint
	for id, count := range counts {
		if count > max {
			max = count
			leader = id
			tied = false
		} else if count == max {
			tied = true
		}
	}

	if max == 0 || tied {
		return nil
	}

	for i := range p.Books {
		if p.Books[i].ID == leader {
			return &p.Books[i]
		}
	}
	return nil
}
