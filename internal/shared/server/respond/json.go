package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// DataEnvelope wraps a payload under the conventional "data" key.
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

// Data writes the payload wrapped in a {"data": ...} envelope.
func Data(c *gin.Context, status int, payload interface{}) {
	JSON(c, status, DataEnvelope{Data: payload})
}
