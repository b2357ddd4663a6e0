package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alumni-connect/internal/core/auth"
	resp "alumni-connect/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(t *testing.T, e *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, resp.Resp) {
	t.Helper()
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var r resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return w, r
}

func echoIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, resp.OK(gin.H{"uid": c.GetString(KeyUserID), "role": c.GetString(KeyRole)}))
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "t", TTL: time.Hour}
	e := gin.New()
	e.GET("/any", AuthJWT(j), echoIdentity)
	e.GET("/admin", AuthJWT(j, "admin"), echoIdentity)

	get := func(path, token string) resp.Resp {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		_, r := serve(t, e, req)
		return r
	}

	assert.Equal(t, resp.CodeUnauthorized, get("/any", "").Code)
	assert.Equal(t, resp.CodeUnauthorized, get("/any", "not-a-jwt").Code)

	alumni, _, err := j.Issue("u1", "alumni")
	require.NoError(t, err)
	r := get("/any", alumni)
	require.Equal(t, resp.CodeOK, r.Code)
	assert.Equal(t, map[string]any{"uid": "u1", "role": "alumni"}, r.Data)
	assert.Equal(t, resp.CodeForbidden, get("/admin", alumni).Code)

	admin, _, err := j.Issue("root", "admin")
	require.NoError(t, err)
	assert.Equal(t, resp.CodeOK, get("/admin", admin).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	e := gin.New()
	e.POST("/login", RateLimitPerIP(0.001, 2, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(nil))
	})

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		_, r := serve(t, e, req)
		return r.Code
	}

	assert.Equal(t, resp.CodeOK, from("10.0.0.1"))
	assert.Equal(t, resp.CodeOK, from("10.0.0.1"))
	assert.Equal(t, resp.CodeTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, resp.CodeOK, from("10.0.0.2"))
}

func TestRequestID(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(gin.H{"rid": c.GetString(KeyRequestID)}))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	w, r := serve(t, e, req)
	assert.Equal(t, "abc-123", w.Header().Get(KeyRequestID))
	assert.Equal(t, map[string]any{"rid": "abc-123"}, r.Data)

	for _, bad := range []string{"", "has space", strings.Repeat("x", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(KeyRequestID, bad)
		w, _ := serve(t, e, req)
		got := w.Header().Get(KeyRequestID)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36)
	}
}

func TestTimeout(t *testing.T) {
	e := gin.New()
	e.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	_, r := serve(t, e, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, resp.CodeTimeout, r.Code)
}

func TestMaxBodyBytes(t *testing.T) {
	e := gin.New()
	e.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(v))
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"k":"a long value"}`))
	req.Header.Set("Content-Type", "application/json")
	_, r := serve(t, e, req)
	assert.Equal(t, resp.CodeBadRequest, r.Code)
}

func TestAccessLog_LevelFollowsRespCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := gin.New()
	e.Use(RequestID(), AccessLog(zap.New(core)))
	e.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
	e.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
	e.GET("/denied", func(c *gin.Context) { abort(c, resp.CodeUnauthorized, "nope") })
	e.GET("/broken", func(c *gin.Context) { abort(c, resp.CodeUnavailable, "down") })

	for _, p := range []string{"/health", "/ok?token=abc&page=2", "/denied", "/broken"} {
		serve(t, e, httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, map[string][]string{"token": {"****"}, "page": {"2"}}, entries[0].ContextMap()["query"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, 401, entries[1].ContextMap()["code"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestConcurrencyLimit_Busy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	e := gin.New()
	e.GET("/work", ConcurrencyLimit(1, 0), func(c *gin.Context) {
		if c.Query("block") == "1" {
			close(entered)
			<-release
		}
		c.JSON(http.StatusOK, resp.OK(nil))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/work?block=1", nil))
	}()
	<-entered

	_, r := serve(t, e, httptest.NewRequest(http.MethodGet, "/work", nil))
	assert.Equal(t, resp.CodeUnavailable, r.Code)

	close(release)
	<-done
	_, r = serve(t, e, httptest.NewRequest(http.MethodGet, "/work", nil))
	assert.Equal(t, resp.CodeOK, r.Code)
}
