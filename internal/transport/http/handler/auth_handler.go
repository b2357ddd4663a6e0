package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alumni-connect/internal/core/auth"
	"alumni-connect/internal/domain"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/ez"
	mdw "alumni-connect/internal/transport/http/middleware"
)

type AuthHandler struct {
	users *service.UserService
	jwt   *auth.JWTer
}

func NewAuthHandler(users *service.UserService, jwter *auth.JWTer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwter}
}

// 格式层校验只做长度上限；必填/按角色必填由领域层统一列出
type registerReq struct {
	FirstName      string `json:"firstName" binding:"max=64"`
	LastName       string `json:"lastName" binding:"max=64"`
	Email          string `json:"email" binding:"max=191"`
	Password       string `json:"password"`
	Role           string `json:"role" binding:"max=16"`
	GraduationYear int    `json:"graduationYear"`
	Department     string `json:"department" binding:"max=128"`

	CurrentPosition string `json:"currentPosition" binding:"max=128"`
	Company         string `json:"company" binding:"max=128"`
	CurrentYear     int    `json:"currentYear"`
	RollNumber      string `json:"rollNumber" binding:"max=64"`

	Bio            string `json:"bio" binding:"max=2000"`
	LinkedIn       string `json:"linkedin" binding:"max=255"`
	Phone          string `json:"phone" binding:"max=32"`
	Location       string `json:"location" binding:"max=128"`
	ProfilePicture string `json:"profilePicture" binding:"max=512"`
}

func (r registerReq) input() domain.RegisterInput {
	return domain.RegisterInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Password:        r.Password,
		Role:            domain.Role(r.Role),
		GraduationYear:  r.GraduationYear,
		Department:      r.Department,
		CurrentPosition: r.CurrentPosition,
		Company:         r.Company,
		CurrentYear:     r.CurrentYear,
		RollNumber:      r.RollNumber,
		Details: domain.Details{
			Bio:            r.Bio,
			LinkedIn:       r.LinkedIn,
			Phone:          r.Phone,
			Location:       r.Location,
			ProfilePicture: r.ProfilePicture,
		},
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionOut struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      domain.SafeUser `json:"user"`
}

// profileReq 省略的字段保持不变；role/email/编号不在其中
type profileReq struct {
	FirstName      *string `json:"firstName" binding:"omitempty,max=64"`
	LastName       *string `json:"lastName" binding:"omitempty,max=64"`
	GraduationYear *int    `json:"graduationYear"`
	Department     *string `json:"department" binding:"omitempty,max=128"`

	CurrentPosition *string `json:"currentPosition" binding:"omitempty,max=128"`
	Company         *string `json:"company" binding:"omitempty,max=128"`
	CurrentYear     *int    `json:"currentYear"`
	RollNumber      *string `json:"rollNumber" binding:"omitempty,max=64"`

	Bio            *string `json:"bio" binding:"omitempty,max=2000"`
	LinkedIn       *string `json:"linkedin" binding:"omitempty,max=255"`
	Phone          *string `json:"phone" binding:"omitempty,max=32"`
	Location       *string `json:"location" binding:"omitempty,max=128"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,max=512"`

	Password *string `json:"password"`
}

func (r profileReq) update() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		GraduationYear:  r.GraduationYear,
		Department:      r.Department,
		CurrentPosition: r.CurrentPosition,
		Company:         r.Company,
		CurrentYear:     r.CurrentYear,
		RollNumber:      r.RollNumber,
		Bio:             r.Bio,
		LinkedIn:        r.LinkedIn,
		Phone:           r.Phone,
		Location:        r.Location,
		ProfilePicture:  r.ProfilePicture,
		Password:        r.Password,
	}
}

func (h *AuthHandler) session(u domain.SafeUser) (sessionOut, error) {
	tok, exp, err := h.jwt.Issue(u.ID, string(u.Role))
	if err != nil {
		return sessionOut{}, ez.Internal("issue token failed", err)
	}
	return sessionOut{Token: tok, ExpiresAt: exp, User: u}, nil
}

// Mount public：/auth/register、/auth/login；authed：/auth/profile
func (h *AuthHandler) Mount(public, authed ez.EZ) {
	ez.RegisterAction(public, ez.Action[registerReq, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerReq) (sessionOut, error) {
			u, err := h.users.Register(c.Request.Context(), in.input())
			if err != nil {
				return sessionOut{}, err
			}
			return h.session(u)
		},
	})

	ez.RegisterAction(public, ez.Action[loginReq, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginReq) (sessionOut, error) {
			u, err := h.users.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return sessionOut{}, err
			}
			return h.session(u)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, domain.SafeUser]{
		Method: http.MethodGet,
		Path:   "/auth/profile",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.SafeUser, error) {
			return h.users.Profile(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})

	ez.RegisterAction(authed, ez.Action[profileReq, domain.SafeUser]{
		Method: http.MethodPut,
		Path:   "/auth/profile",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileReq) (domain.SafeUser, error) {
			return h.users.UpdateProfile(c.Request.Context(), c.GetString(mdw.KeyUserID), in.update())
		},
	})
}
