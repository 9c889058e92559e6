package polls

import (
	"net/http"

	"github.com/bookclub/bookpoll/logger"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/bookclub/bookpoll/modules/issues"
	"github.com/bookclub/bookpoll/modules/notify"
	"github.com/gin-gonic/gin"
)

func runClosePoll(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	poll, err := service.Close(pollId(c), user)
	if err != nil {
		respondError(c, err)
		return
	}

	if poll.Group != nil {
		// winner title resolution happens after the lock is released;
		// a tracker outage only costs the notification detail
		winnerText := "no winner"
		if poll.WinBookID != nil {
			winnerText = resolveWinnerTitle(poll)
		}

		notify.Async(notify.Message{
			WebhookUrl: poll.Group.SlackWebhookUrl,
			Channel:    poll.Group.SlackChannel,
			Username:   poll.Group.SlackUsername,
			Text: notify.Render(poll.Group.SlackEndMessage, map[string]string{
				"subject": poll.Subject,
				"winner":  winnerText,
				"url":     pollUrl(poll.ID),
			}),
		})
	}

	c.JSON(http.StatusOK, gin.H{"poll": poll})
}

func resolveWinnerTitle(poll *Poll) string {
	for _, b := range poll.Books {
		if b.ID != *poll.WinBookID {
			continue
		}

		list, err := issues.All(poll.Group.Organization, poll.Group.Repository)
		if err != nil {
			logger.Err().Println(err.Error())
			return b.IssueUrl
		}
		if issue := issues.Lookup(list, b.IssueID); issue != nil {
			return issue.Title
		}
		return b.IssueUrl
	}
	return "no winner"
}
