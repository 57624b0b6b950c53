package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseUintParam reads a numeric path parameter, returning 0 when absent
// or not a number. Callers treat 0 as invalid since IDs start at 1.
func parseUintParam(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}

// parseUintQuery reads a numeric query parameter with the same contract
func parseUintQuery(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
