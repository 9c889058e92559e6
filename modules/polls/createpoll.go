package polls

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/bookclub/bookpoll/modules/notify"
	"github.com/gin-gonic/gin"
)

type pollIssue struct {
	Id  int64  `json:"id" binding:"required"`
	Url string `json:"url"`
}

type createPollRequest struct {
	Subject      string      `json:"subject" binding:"required"`
	Doubles      int         `json:"doubles"`
	End          time.Time   `json:"end"`
	Organization string      `json:"organization"`
	Repository   string      `json:"repository"`
	Issues       []pollIssue `json:"issues" binding:"required,min=2,dive"`
}

func runCreatePoll(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group *Group
	var err error
	if req.Organization == "" {
		group, err = service.DefaultGroup()
	} else {
		group, err = service.GroupByName(req.Organization, req.Repository)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if !auth.IsMember(user.Login, group.Organization) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of " + group.Organization})
		return
	}

	poll := NewPoll()
	poll.Subject = req.Subject
	poll.OwnerID = user.ID
	poll.GroupID = &group.ID
	if req.Doubles > 0 {
		poll.Doubles = req.Doubles
	}
	if !req.End.IsZero() {
		poll.End = req.End
	}
	for _, v := range req.Issues {
		poll.Books = append(poll.Books, Book{IssueID: v.Id, IssueUrl: v.Url})
	}

	if err = service.Create(poll); err != nil {
		respondError(c, err)
		return
	}

	notify.Async(notify.Message{
		WebhookUrl: group.SlackWebhookUrl,
		Channel:    group.SlackChannel,
		Username:   group.SlackUsername,
		Text: notify.Render(group.SlackBeginMessage, map[string]string{
			"subject": poll.Subject,
			"url":     pollUrl(poll.ID),
		}),
	})

	c.JSON(http.StatusCreated, gin.H{"poll": poll})
}

func pollUrl(id uint) string {
	return fmt.Sprintf("%s/polls/%d", env.GetOr("web.url", "http://localhost:8080"), id)
}
