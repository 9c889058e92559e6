package stock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/modules/auth"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testEngine(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	database.Set(testDb)
	t.Cleanup(func() { database.Set(nil) })

	e := gin.New()
	(&Module{}).Load(e)
	return e
}

func sessionFor(t *testing.T, login string) *http.Cookie {
	env.Set("session.secret", "stock-test-secret")

	user := &auth.User{Login: login}
	require.NoError(t, db.Create(user).Error)

	claims := jwt.RegisteredClaims{
		Subject:   login,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("stock-test-secret"))
	require.NoError(t, err)

	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func TestStockLifecycle(t *testing.T) {
	e := testEngine(t)

	withCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"volumeInfo": {
				"title": "Dune",
				"authors": ["Frank Herbert"],
				"publisher": "Chilton"
			}}]
		}`))
	})

	cookie := sessionFor(t, "reader")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "anonymous requests are rejected")

	body, err := json.Marshal(addStockRequest{Isbn: "978-0-306-40615-7", Memo: "club pick"})
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/stocks", bytes.NewReader(body))
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Stock Stock `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "9780306406157", created.Stock.Isbn, "ISBN stored normalized")
	assert.Equal(t, "Dune", created.Stock.Title)
	assert.Equal(t, "Frank Herbert", created.Stock.Author)
	assert.Equal(t, "club pick", created.Stock.Memo)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/stocks", bytes.NewReader(body))
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code, "same ISBN cannot be shelved twice")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/stocks/%d/read", created.Stock.ID), nil)
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	reloaded := &Stock{}
	require.NoError(t, db.First(reloaded, created.Stock.ID).Error)
	assert.True(t, reloaded.Read)

	other := sessionFor(t, "other")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/stocks/%d", created.Stock.ID), nil)
	req.AddCookie(other)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "another user's shelf entry looks absent")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/stocks/%d", created.Stock.ID), nil)
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&Stock{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddStockMalformedIsbn(t *testing.T) {
	e := testEngine(t)
	cookie := sessionFor(t, "reader")

	body, err := json.Marshal(addStockRequest{Isbn: "not-an-isbn"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stocks", bytes.NewReader(body))
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddStockCatalogMiss(t *testing.T) {
	e := testEngine(t)
	cookie := sessionFor(t, "reader")

	withCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	body, err := json.Marshal(addStockRequest{Isbn: "9780306406157"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stocks", bytes.NewReader(body))
	req.AddCookie(cookie)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, db.Model(&Stock{}).Count(&count).Error)
	assert.Zero(t, count, "a miss shelves nothing")
}
