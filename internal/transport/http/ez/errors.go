package ez

import (
	"context"
	"errors"
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"

	"alumni-connect/internal/domain"
	resp "alumni-connect/internal/transport/http/response"
)

// AErr 统一错误对象（配合 resp.ErrorWithData）
type AErr struct {
	Code int
	Msg  string
	Data any
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromError 领域错误 -> AErr；未知错误一律 500，不向外暴露细节
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	if ve, ok := domain.AsValidation(err); ok {
		return &AErr{Code: resp.CodeBadRequest, Msg: "validation failed", Data: ve, Err: err}
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return &AErr{Code: resp.CodeConflict, Msg: "email already registered", Err: err}
	case errors.Is(err, domain.ErrIdentifierConflict):
		return &AErr{Code: resp.CodeConflict, Msg: "could not allocate identifier, please retry", Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &AErr{Code: resp.CodeUnauthorized, Msg: "invalid credentials", Err: err}
	case errors.Is(err, domain.ErrAccountDisabled):
		return &AErr{Code: resp.CodeForbidden, Msg: "account disabled", Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: "not found", Err: err}
	case errors.Is(err, domain.ErrCredential):
		return &AErr{Code: resp.CodeServerError, Msg: "credential processing failed", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Code: resp.CodeTimeout, Msg: "timeout", Err: err}
	case errors.Is(err, domain.ErrUnavailable):
		return &AErr{Code: resp.CodeUnavailable, Msg: "service unavailable, retry later", Err: err}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}

// BindError gin 绑定失败：格式校验错误按字段列出，其余为请求体不合法
func BindError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &AErr{Code: resp.CodeBadRequest, Msg: "request body too large", Err: err}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &AErr{Code: resp.CodeBadRequest, Msg: "invalid request body", Err: err}
	}
	ve := &domain.ValidationError{}
	for _, fe := range verrs {
		ve.Add(lowerFirst(fe.Field()), "failed on '"+fe.Tag()+"'")
	}
	return ve
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
