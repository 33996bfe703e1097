// Package handlers implements the HTTP endpoints the browser extension calls.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": msg,
		"code":  code,
	})
}

func internalError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": msg,
		"code":  "INTERNAL_ERROR",
	})
}
