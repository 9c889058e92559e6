package polls

import (
	"fmt"
	"testing"

	"github.com/bookclub/bookpoll/modules/auth"
	"gorm.io/gorm"
)

func memUser(id uint) *auth.User {
	return &auth.User{Model: gorm.Model{ID: id}, Login: fmt.Sprintf("member%d", id)}
}

func memPoll(bookCount int) *Poll {
	p := NewPoll()
	p.Model = gorm.Model{ID: 1}
	p.Subject = "next book"
	p.OwnerID = 99
	for i := 1; i <= bookCount; i++ {
		p.Books = append(p.Books, Book{Model: gorm.Model{ID: uint(i)}, IssueID: int64(100 + i)})
	}
	return p
}

func castVote(p *Poll, userId uint, bookIds ...uint) {
	for _, b := range bookIds {
		p.Votes = append(p.Votes, Vote{
			PollID: p.ID,
			UserID: userId,
			BookID: b,
			User:   *memUser(userId),
		})
	}
}

func Test_JudgeWinner(t *testing.T) {
	t.Run("strict plurality wins", func(t *testing.T) {
		p := memPoll(3)
		castVote(p, 1, 1, 2)
		castVote(p, 2, 1, 3)
		castVote(p, 3, 1, 2)

		winner := p.JudgeWinner()
		if winner == nil {
			t.Fatal("expected a winner")
		}
		if winner.ID != 1 {
			t.Errorf("expected book 1 to win, got %d", winner.ID)
		}
	})

	t.Run("tie means no winner", func(t *testing.T) {
		p := memPoll(3)
		castVote(p, 1, 1, 2)
		castVote(p, 2, 1, 3)
		castVote(p, 3, 2, 3)

		if winner := p.JudgeWinner(); winner != nil {
			t.Errorf("expected no winner on a tie, got book %d", winner.ID)
		}
	})

	t.Run("no votes means no winner", func(t *testing.T) {
		p := memPoll(3)
		if winner := p.JudgeWinner(); winner != nil {
			t.Errorf("expected no winner without votes, got book %d", winner.ID)
		}
	})

	t.Run("idempotent and side effect free", func(t *testing.T) {
		p := memPoll(3)
		castVote(p, 1, 1, 2)
		castVote(p, 2, 1, 3)
		votesBefore := len(p.Votes)

		first := p.JudgeWinner()
		second := p.JudgeWinner()

		if first == nil || second == nil || first.ID != second.ID {
			t.Error("repeated calls disagreed")
		}
		if len(p.Votes) != votesBefore {
			t.Error("judging the winner mutated the poll")
		}
	})
}

func Test_PopularityRate(t *testing.T) {
	t.Run("foreign book yields zeroes", func(t *testing.T) {
		p := memPoll(2)
		castVote(p, 1, 1, 2)

		votes, voters, rate := p.PopularityRate(&Book{Model: gorm.Model{ID: 42}})
		if votes != 0 || voters != 0 || rate != 0 {
			t.Errorf("expected (0,0,0), got (%d,%d,%f)", votes, voters, rate)
		}
	})

	t.Run("nil book yields zeroes", func(t *testing.T) {
		p := memPoll(2)
		if votes, voters, rate := p.PopularityRate(nil); votes != 0 || voters != 0 || rate != 0 {
			t.Errorf("expected (0,0,0), got (%d,%d,%f)", votes, voters, rate)
		}
	})

	t.Run("zero voters never divides", func(t *testing.T) {
		p := memPoll(2)
		votes, voters, rate := p.PopularityRate(&p.Books[0])
		if votes != 0 || voters != 0 || rate != 0 {
			t.Errorf("expected (0,0,0), got (%d,%d,%f)", votes, voters, rate)
		}
	})

	t.Run("rate is votes per voter, not a share", func(t *testing.T) {
		// with doubles=2 each voter feeds two books, so the per-book
		// rates in one poll can sum past 1
		p := memPoll(3)
		castVote(p, 1, 1, 2)
		castVote(p, 2, 1, 3)
		castVote(p, 3, 1, 2)

		votes, voters, rate := p.PopularityRate(&p.Books[0])
		if votes != 3 || voters != 3 {
			t.Errorf("expected 3 votes from 3 voters, got %d/%d", votes, voters)
		}
		if rate != 1.0 {
			t.Errorf("expected rate 1.0, got %f", rate)
		}
	})
}

func Test_IsResultAccessible(t *testing.T) {
	p := memPoll(2)
	p.OwnerID = 1
	castVote(p, 2, 1, 2)

	t.Run("open poll", func(t *testing.T) {
		if p.IsResultAccessible(nil) {
			t.Error("anonymous viewer should not see open results")
		}
		if p.IsResultAccessible(memUser(3)) {
			t.Error("non-voter should not see open results")
		}
		if !p.IsResultAccessible(memUser(2)) {
			t.Error("voter should see open results")
		}
		if !p.IsResultAccessible(memUser(1)) {
			t.Error("owner should see open results")
		}
	})

	t.Run("closed poll is public", func(t *testing.T) {
		p.State = StateClosed
		if !p.IsResultAccessible(nil) || !p.IsResultAccessible(memUser(3)) {
			t.Error("closed results should be visible to everyone")
		}
	})
}

func Test_Voters(t *testing.T) {
	p := memPoll(3)
	castVote(p, 1, 1, 2)
	castVote(p, 2, 2, 3)
	castVote(p, 1, 3) // extra row for same user must not duplicate

	voters := p.Voters()
	if len(voters) != 2 {
		t.Fatalf("expected 2 distinct voters, got %d", len(voters))
	}
	if voters[0].ID != 1 || voters[1].ID != 2 {
		t.Error("voters not in insertion order")
	}
}

func Test_NewPoll(t *testing.T) {
	p := NewPoll()

	if p.State != StateOpen {
		t.Errorf("new poll should be OPEN, got %s", p.State)
	}
	if p.Doubles != 2 {
		t.Errorf("default doubles should be 2, got %d", p.Doubles)
	}
	if !p.End.After(p.Begin) {
		t.Error("default end should fall after begin")
	}
	if len(p.Votes) != 0 {
		t.Error("new poll should have no votes")
	}
}

func Test_LabelQuery(t *testing.T) {
	g := &Group{LabelFilter: "part-%s"}
	if q := g.LabelQuery(); q != "part-" {
		t.Errorf("expected part-, got %s", q)
	}

	g = &Group{}
	if q := g.LabelQuery(); q != "" {
		t.Errorf("expected empty query, got %s", q)
	}
}
