package polls

import (
	"net/http"

	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type voteRequest struct {
	BookIds []uint `json:"book_ids" binding:"required"`
}

func pollId(c *gin.Context) uint {
	return cast.ToUint(c.Param("id"))
}

func runVoteCast(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// membership gate runs before the submit lock so the critical
	// section never waits on the network
	poll, err := service.Get(pollId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if poll.Group != nil && !auth.IsMember(user.Login, poll.Group.Organization) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of " + poll.Group.Organization})
		return
	}

	updated, err := service.Submit(poll.ID, user, req.BookIds)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "vote recorded",
		"voters":  len(updated.Voters()),
	})
}
