package stock

import (
	"errors"
	"net/http"

	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/logger"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

type Module struct {
}

var db *gorm.DB

func (*Module) Name() string {
	return "stock"
}

func (*Module) Load(e *gin.Engine) {
	var err error
	db, err = database.Get()
	if err != nil {
		logger.Err().Fatalf("Unable to get database connection: %s", err.Error())
	}

	if err = db.AutoMigrate(&auth.User{}, &Stock{}); err != nil {
		logger.Err().Fatalf("Unable to migrate stock schema: %s", err.Error())
	}

	e.GET("/api/stocks", runListStocks)
	e.POST("/api/stocks", runAddStock)
	e.POST("/api/stocks/:id/read", runToggleRead)
	e.DELETE("/api/stocks/:id", runDeleteStock)
}

type addStockRequest struct {
	Isbn string `json:"isbn" binding:"required"`
	Memo string `json:"memo"`
}

func runListStocks(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var list []Stock
	err := db.Where(&Stock{UserID: user.ID}).Order("id desc").Find(&list).Error
	if err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stocks": list})
}

func runAddStock(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req addStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isbn, err := NormalizeIsbn(req.Isbn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing := &Stock{}
	err = db.Where(&Stock{UserID: user.ID, Isbn: isbn}).First(existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": ErrStockExists.Error()})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return
	}

	entry := &Stock{UserID: user.ID, Isbn: isbn, Memo: req.Memo}

	book, err := Lookup(isbn)
	catalogErr := &CatalogError{}
	switch {
	case err == nil:
		entry.Title = book.Title
		entry.Author = book.Author
		entry.Publisher = book.Publisher
		entry.Thumbnail = book.Thumbnail
	case errors.Is(err, ErrCatalogMiss):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.As(err, &catalogErr):
		logger.Err().Println(err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	if err = db.Create(entry).Error; err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stock": entry})
}

func runToggleRead(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	entry, ok := ownStock(c, user)
	if !ok {
		return
	}

	err := db.Model(entry).Update("read", !entry.Read).Error
	if err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock": entry})
}

func runDeleteStock(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	entry, ok := ownStock(c, user)
	if !ok {
		return
	}

	if err := db.Delete(entry).Error; err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func ownStock(c *gin.Context, user *auth.User) (*Stock, bool) {
	entry := &Stock{}
	err := db.First(entry, cast.ToUint(c.Param("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && entry.UserID != user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrStockNotFound.Error()})
		return nil, false
	}
	if err != nil {
		logger.Err().Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data access error"})
		return nil, false
	}
	return entry, true
}
