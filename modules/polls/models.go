package polls

import (
	"strings"
	"time"

	"github.com/bookclub/bookpoll/modules/auth"
	"gorm.io/gorm"
)

// Poll states. StatePreOpen exists in the stored schema but nothing
// ever transitions a poll into it; it is reserved, not reachable.
const (
	StatePreOpen = "PRE_OPEN"
	StateOpen    = "OPEN"
	StateClosed  = "CLOSED"
)

// Group scopes polls to one organization/repository pair and carries
// that scope's Slack settings. The single row with a null owner is the
// default group, seeded from the environment at startup.
type Group struct {
	gorm.Model
	Organization      string     `gorm:"uniqueIndex:group_idx" json:"organization"`
	Repository        string     `gorm:"uniqueIndex:group_idx" json:"repository"`
	LabelFilter       string     `json:"label_filter"`
	OwnerID           *uint      `json:"-"`
	Owner             *auth.User `json:"owner,omitempty"`
	SlackWebhookUrl   string     `json:"-"`
	SlackChannel      string     `json:"slack_channel,omitempty"`
	SlackUsername     string     `json:"slack_username,omitempty"`
	SlackBeginMessage string     `json:"-"`
	SlackEndMessage   string     `json:"-"`
}

// LabelQuery derives the substring matched against issue labels by
// stripping the placeholder from the filter pattern.
func (g *Group) LabelQuery() string {
	return strings.ReplaceAll(g.LabelFilter, "%s", "")
}

// Book is one poll option, a reference to an external issue. Its
// display payload and vote count are derived at read time, never
// stored.
type Book struct {
	gorm.Model
	PollID   uint   `json:"-"`
	IssueID  int64  `json:"issue_id"`
	IssueUrl string `json:"issue_url"`
}

// Vote records one user's pick of one book in one poll. Votes are
// never edited or deleted; CreatedAt is the cast timestamp.
type Vote struct {
	gorm.Model
	PollID uint      `json:"-"`
	UserID uint      `json:"-"`
	User   auth.User `json:"user"`
	BookID uint      `json:"book_id"`
}

type Poll struct {
	gorm.Model
	Subject   string    `json:"subject"`
	OwnerID   uint      `json:"-"`
	Owner     auth.User `json:"owner"`
	State     string    `json:"state"`
	Begin     time.Time `json:"begin"`
	End       time.Time `json:"end"`
	Doubles   int       `json:"doubles"`
	GroupID   *uint     `json:"-"`
	Group     *Group    `json:"group,omitempty"`
	WinBookID *uint     `json:"win_book_id,omitempty"`
	Books     []Book    `json:"books"`
	Votes     []Vote    `json:"votes,omitempty"`
}
