package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// PartialHeader marks requests that only want the fragment of the page that changed
	PartialHeader  = "HX-Request"
	partialContext = "partial"
)

// Partial flags requests sent by the page scripts for in-place refreshes
func Partial() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(partialContext, strings.EqualFold(c.GetHeader(PartialHeader), "true"))
		c.Next()
	}
}

// IsPartial reports whether the request asked for a partial refresh
func IsPartial(c *gin.Context) bool {
	return c.GetBool(partialContext)
}
