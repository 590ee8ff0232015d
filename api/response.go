package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the "code" field of failed responses.
const (
	codeInvalidPath    = 40001
	codeEmptyMessage   = 40002
	codeInvalidJSON    = 40003
	codeInvalidQuery   = 40004
	codeRoomNotFound   = 40401
	codeRouteNotFound  = 40400
	codeMethodNotFound = 40500
	codeNoRoomSelected = 40901
	codeSendFailure    = 42201
	codeInternal       = 50001
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
