package polls

import (
	"net/http"

	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/bookclub/bookpoll/modules/issues"
	"github.com/gin-gonic/gin"
)

type groupRequest struct {
	Organization      string `json:"organization" binding:"required"`
	Repository        string `json:"repository" binding:"required"`
	LabelFilter       string `json:"label_filter"`
	SlackWebhookUrl   string `json:"slack_webhook_url"`
	SlackChannel      string `json:"slack_channel"`
	SlackUsername     string `json:"slack_username"`
	SlackBeginMessage string `json:"slack_begin_message"`
	SlackEndMessage   string `json:"slack_end_message"`
}

func runListGroups(c *gin.Context) {
	list, err := service.Groups()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": list})
}

func runDefaultGroup(c *gin.Context) {
	group, err := service.DefaultGroup()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

func runAddGroup(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.IsMember(user.Login, req.Organization) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of " + req.Organization})
		return
	}

	group := &Group{
		Organization:      req.Organization,
		Repository:        req.Repository,
		LabelFilter:       req.LabelFilter,
		OwnerID:           &user.ID,
		SlackWebhookUrl:   req.SlackWebhookUrl,
		SlackChannel:      req.SlackChannel,
		SlackUsername:     req.SlackUsername,
		SlackBeginMessage: req.SlackBeginMessage,
		SlackEndMessage:   req.SlackEndMessage,
	}

	if err := service.AddGroup(group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func runGroupIssues(c *gin.Context) {
	group, err := service.GroupByName(c.Param("organization"), c.Param("repository"))
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := issues.Open(group.Organization, group.Repository, group.LabelQuery())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": list})
}
