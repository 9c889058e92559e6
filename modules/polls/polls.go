package polls

import (
	"errors"
	"net/http"

	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/logger"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/bookclub/bookpoll/modules/issues"
	"github.com/gin-gonic/gin"
)

type Module struct {
}

var service *Service

func (*Module) Name() string {
	return "polls"
}

func (*Module) Load(e *gin.Engine) {
	db, err := database.Get()
	if err != nil {
		logger.Err().Fatalf("Unable to get database connection: %s", err.Error())
	}

	err = db.AutoMigrate(&auth.User{}, &Group{}, &Book{}, &Vote{}, &Poll{})
	if err != nil {
		logger.Err().Fatalf("Unable to migrate poll schema: %s", err.Error())
	}

	service = NewService(db)

	_, err = service.BootstrapDefaultGroup(Group{
		Organization:      env.GetOr("group.organization", "bookclub"),
		Repository:        env.GetOr("group.repository", "books"),
		LabelFilter:       env.Get("group.label.filter"),
		SlackWebhookUrl:   env.Get("slack.webhook.url"),
		SlackChannel:      env.Get("slack.channel"),
		SlackUsername:     env.GetOr("slack.username", "bookpoll"),
		SlackBeginMessage: env.Get("slack.begin.message"),
		SlackEndMessage:   env.Get("slack.end.message"),
	})
	if err != nil {
		// serving with an ambiguous default group would scatter new
		// polls across the wrong scope, so give up instead
		logger.Err().Fatalf("Unable to bootstrap default group: %s", err.Error())
	}

	e.GET("/api/polls", runListPolls)
	e.POST("/api/polls", runCreatePoll)
	e.GET("/api/polls/:id", runGetPoll)
	e.POST("/api/polls/:id/votes", runVoteCast)
	e.POST("/api/polls/:id/close", runClosePoll)
	e.GET("/api/polls/:id/result", runResults)

	e.GET("/api/groups", runListGroups)
	e.POST("/api/groups", runAddGroup)
	e.GET("/api/groups/default", runDefaultGroup)
	e.GET("/api/groups/:organization/:repository/issues", runGroupIssues)
}

func respondError(c *gin.Context, err error) {
	accessErr := &issues.AccessError{}

	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrResultNotAccessible):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyVoted), errors.Is(err, ErrPollClosed), errors.Is(err, ErrGroupExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWrongVoteCount), errors.Is(err, ErrBookNotInPoll):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &accessErr):
		logger.Err().Println(err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "issue source unavailable"})
	case errors.Is(err, ErrDefaultGroupMissing):
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
	}
}

func runListPolls(c *gin.Context) {
	list, err := service.All()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"polls": list})
}

func runGetPoll(c *gin.Context) {
	poll, err := service.Get(pollId(c))
	if err != nil {
		respondError(c, err)
		return
	}

	user := auth.CurrentUser(c)

	// votes stay hidden on open polls unless the viewer may see results
	if !poll.IsResultAccessible(user) {
		poll.Votes = nil
	}

	resolved, issueErr := resolveBooks(poll)

	c.JSON(http.StatusOK, gin.H{
		"poll":              poll,
		"books":             resolved,
		"voted":             poll.IsVoted(user),
		"owner":             poll.IsOwner(user),
		"result_accessible": poll.IsResultAccessible(user),
		"issue_error":       issueErr,
	})
}
