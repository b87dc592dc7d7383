package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger installs the logger used when building error responses.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
	// Fields carries field-keyed validation messages so the admin UI can
	// jump to the first failing tab.
	Fields map[string]string `json:"fields,omitempty"`
}

// Err builds an error response. Error detail is only exposed outside
// release mode.
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	if err != nil {
		log.Debug("request error", zap.Int("code", errCode), zap.Error(err))
		if gin.Mode() != gin.ReleaseMode {
			res.Error = fmt.Sprintf("%+v", err)
		}
	}
	return res
}

func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// ValidationErr surfaces the editor's required-field failures.
func ValidationErr(fields map[string]string) Response {
	return Response{
		Code:   http.StatusUnprocessableEntity,
		Msg:    "validation failed",
		Fields: fields,
	}
}
