package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumni-connect/internal/domain"
	mdw "alumni-connect/internal/transport/http/middleware"
	resp "alumni-connect/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFromError(t *testing.T) {
	ve := &domain.ValidationError{}
	ve.Add("company", "required")

	cases := []struct {
		err  error
		code int
	}{
		{ve, resp.CodeBadRequest},
		{fmt.Errorf("register: %w", domain.ErrDuplicateEmail), resp.CodeConflict},
		{domain.ErrIdentifierConflict, resp.CodeConflict},
		{domain.ErrInvalidCredentials, resp.CodeUnauthorized},
		{domain.ErrAccountDisabled, resp.CodeForbidden},
		{domain.ErrNotFound, resp.CodeNotFound},
		{domain.ErrCredential, resp.CodeServerError},
		{context.DeadlineExceeded, resp.CodeTimeout},
		{fmt.Errorf("op: %w: %w", domain.ErrUnavailable, errors.New("conn refused")), resp.CodeUnavailable},
		{Forbidden("nope"), resp.CodeForbidden},
		{errors.New("boom"), resp.CodeServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.code, FromError(tc.err).Code)
		})
	}

	ae := FromError(ve)
	assert.Equal(t, "validation failed", ae.Msg)
	assert.Same(t, ve, ae.Data)

	// 未知错误不向外暴露原始信息
	assert.Equal(t, "internal error", FromError(errors.New("pq: secret detail")).Error())
}

func TestBindError(t *testing.T) {
	type body struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(body{Email: "x"})
	require.Error(t, err)

	got := BindError(err)
	ve, ok := domain.AsValidation(got)
	require.True(t, ok)
	assert.True(t, ve.Has("email"))

	got = BindError(errors.New("unexpected EOF"))
	assert.Equal(t, resp.CodeBadRequest, FromError(got).Code)
	assert.Equal(t, "invalid request body", got.Error())

	got = BindError(fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 8}))
	assert.Equal(t, "request body too large", got.Error())
}

func TestToSnake(t *testing.T) {
	for in, want := range map[string]string{
		"ID":          "id",
		"OrganizerID": "organizer_id",
		"MenteeID":    "mentee_id",
		"StartsAt":    "starts_at",
		"HTTPServer":  "http_server",
		"title":       "title",
	} {
		assert.Equal(t, want, toSnake(in), in)
	}
}

func TestPaging(t *testing.T) {
	for q, want := range map[string][3]int{
		"":                 {1, 20, 0},
		"?page=3&size=10":  {3, 10, 20},
		"?page=-1&size=0":  {1, 20, 0},
		"?page=2&size=500": {2, 20, 20},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+q, nil)
		page, size, offset := Paging(c)
		assert.Equal(t, want, [3]int{page, size, offset}, q)
	}
}

type greetIn struct {
	Name string `json:"name" binding:"required,max=5"`
}

func TestRegisterAction(t *testing.T) {
	e := gin.New()
	e.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(mdw.KeyUserID, uid)
			c.Set(mdw.KeyRole, c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	api := New(e.Group("/"), nil)
	RegisterAction(api, Action[greetIn, string]{
		Method: http.MethodPost,
		Path:   "/greet",
		Binder: BindJSON,
		Auth:   true,
		Roles:  []string{"alumni"},
		Handler: func(c *gin.Context, in *greetIn) (string, error) {
			if in.Name == "err" {
				return "", domain.ErrNotFound
			}
			return "hi " + in.Name, nil
		},
	})

	do := func(user, role, body string) resp.Resp {
		req := httptest.NewRequest(http.MethodPost, "/greet", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var r resp.Resp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
		return r
	}

	assert.Equal(t, resp.CodeUnauthorized, do("", "", `{"name":"ada"}`).Code)
	assert.Equal(t, resp.CodeForbidden, do("u1", "student", `{"name":"ada"}`).Code)
	assert.Equal(t, resp.CodeBadRequest, do("u1", "alumni", `{"name":"too-long"}`).Code)
	assert.Equal(t, resp.CodeNotFound, do("u1", "alumni", `{"name":"err"}`).Code)

	r := do("u1", "alumni", `{"name":"ada"}`)
	assert.Equal(t, resp.CodeOK, r.Code)
	assert.Equal(t, "hi ada", r.Data)
}
