package middlewares

import "github.com/gin-gonic/gin"

// abortError writes the same error envelope the handlers use.
func abortError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": id,
		},
	})
}
