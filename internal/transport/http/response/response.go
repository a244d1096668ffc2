package response

import "github.com/gin-gonic/gin"

// Every error on the wire is {"message": "..."}; clients render the message
// verbatim, so credential failures must keep theirs deliberately vague.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"message": message})
}

func Message(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"message": message})
}
