// file: utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeOK               = 0
	CodeInvalidParams    = 1001
	CodeEmptyFlag        = 1003
	CodeDuplicateUser    = 2001
	CodeBadCredentials   = 2002
	CodeAccountInactive  = 2005
	CodeNotAuthenticated = 4001
	CodeForbidden        = 4003
	CodeNotFound         = 4004
	CodePersistence      = 5000
	CodeTokenIssue       = 5002
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Msg: msg, Data: data})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{Code: code, Msg: msg})
}
