package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm/clause"
)

var apiUrl = "https://api.github.com"

var client = &http.Client{
	Timeout: time.Second * 30,
}

var oauthConf *oauth2.Config

const stateCookie = "bookpoll_oauth_state"

type Module struct {
}

func (*Module) Name() string {
	return "auth"
}

func (*Module) Load(e *gin.Engine) {
	db, err := database.Get()
	if err != nil {
		logger.Err().Fatalf("Unable to get database connection: %s", err.Error())
	}
	if err = db.AutoMigrate(&User{}); err != nil {
		logger.Err().Fatalf("Unable to migrate auth schema: %s", err.Error())
	}

	if ttl := env.GetInt("membership.ttl.minutes"); ttl > 0 {
		Memberships = NewMembershipCache(time.Duration(ttl) * time.Minute)
	}

	oauthConf = &oauth2.Config{
		ClientID:     env.Get("github.client.id"),
		ClientSecret: env.Get("github.client.secret"),
		Endpoint:     github.Endpoint,
		RedirectURL:  env.Get("github.callback.url"),
		Scopes:       []string{"read:org"},
	}

	e.GET("/auth/login", runLogin)
	e.GET("/auth/callback", runCallback)
	e.GET("/auth/logout", runLogout)
	e.GET("/api/me", runMe)
}

func runLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie(stateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, oauthConf.AuthCodeURL(state))
}

func runCallback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	token, err := oauthConf.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Err().Printf("unable to exchange authorization code\n%s", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}

	authed := oauthConf.Client(c.Request.Context(), token)

	ghUser := struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarUrl string `json:"avatar_url"`
	}{}
	if err = getJson(authed, apiUrl+"/user", &ghUser); err != nil || ghUser.Login == "" {
		logger.Err().Printf("unable to fetch user profile\n%s", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}

	db, err := database.Get()
	if err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	user := &User{Login: ghUser.Login, Name: ghUser.Name, AvatarUrl: ghUser.AvatarUrl}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "avatar_url"}),
	}).Create(user).Error
	if err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// the authed client sees private memberships, so fill the cache
	// here rather than waiting for a public lookup later
	var ghOrgs []struct {
		Login string `json:"login"`
	}
	if err = getJson(authed, apiUrl+"/user/orgs", &ghOrgs); err != nil {
		logger.Err().Printf("unable to list organizations for %s\n%s", ghUser.Login, err)
	} else {
		orgs := make([]string, 0, len(ghOrgs))
		for _, v := range ghOrgs {
			orgs = append(orgs, v.Login)
		}
		Memberships.Put(ghUser.Login, orgs)
	}

	if err = setSession(c, ghUser.Login); err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func runLogout(c *gin.Context) {
	if user := CurrentUser(c); user != nil {
		Memberships.Invalidate(user.Login)
	}
	clearSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func runMe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func getJson(httpClient *http.Client, url string, target interface{}) error {
	response, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		if response.Body != nil {
			_ = response.Body.Close()
		}
	}()

	return json.NewDecoder(response.Body).Decode(target)
}
