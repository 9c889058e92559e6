package polls

import (
	"net/http"

	"github.com/bookclub/bookpoll/logger"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/bookclub/bookpoll/modules/issues"
	"github.com/gin-gonic/gin"
)

type bookResult struct {
	Book   Book     `json:"book"`
	Title  string   `json:"title,omitempty"`
	Author string   `json:"author,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Votes  int      `json:"votes"`
	Voters int      `json:"voters"`
	Rate   float64  `json:"rate"`
	Winner bool     `json:"winner"`
}

func runResults(c *gin.Context) {
	poll, err := service.Get(pollId(c))
	if err != nil {
		respondError(c, err)
		return
	}

	user := auth.CurrentUser(c)
	if !poll.IsResultAccessible(user) {
		respondError(c, ErrResultNotAccessible)
		return
	}

	// while open this is a live preview; once closed the stored
	// winner is authoritative
	var winnerId *uint
	if poll.State == StateClosed {
		winnerId = poll.WinBookID
	} else if w := poll.JudgeWinner(); w != nil {
		winnerId = &w.ID
	}

	books, issueErr := resolveBooks(poll)
	for i := range books {
		books[i].Winner = winnerId != nil && books[i].Book.ID == *winnerId
	}

	voters := make([]string, 0)
	for _, v := range poll.Voters() {
		voters = append(voters, v.Login)
	}

	c.JSON(http.StatusOK, gin.H{
		"poll_id":     poll.ID,
		"subject":     poll.Subject,
		"state":       poll.State,
		"doubles":     poll.Doubles,
		"books":       books,
		"voters":      voters,
		"issue_error": issueErr,
	})
}

// resolveBooks joins the poll's books to their issue payloads and the
// derived vote counts. A tracker failure degrades to bare references
// instead of blocking the poll view.
func resolveBooks(poll *Poll) ([]bookResult, string) {
	var list []issues.Issue
	issueErr := ""
	if poll.Group != nil {
		var err error
		list, err = issues.All(poll.Group.Organization, poll.Group.Repository)
		if err != nil {
			logger.Err().Println(err.Error())
			issueErr = "issue source unavailable"
		}
	}

	results := make([]bookResult, 0, len(poll.Books))
	for i := range poll.Books {
		b := &poll.Books[i]
		votes, voters, rate := poll.PopularityRate(b)
		r := bookResult{Book: *b, Votes: votes, Voters: voters, Rate: rate}
		if issue := issues.Lookup(list, b.IssueID); issue != nil {
			r.Title = issue.Title
			r.Author = issue.User.Login
			for _, l := range issue.Labels {
				r.Labels = append(r.Labels, l.Name)
			}
		}
		results = append(results, r)
	}
	return results, issueErr
}
