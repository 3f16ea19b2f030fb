package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fail writes the error envelope every endpoint uses on failure.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failBinding reports a request-binding failure. Validation failures carry a
// per-field errors map alongside the concatenated message so clients can
// render either form.
func failBinding(c *gin.Context, status int, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fail(c, status, err.Error())
		return
	}

	fields := make(map[string]string, len(verrs))
	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		fields[fe.Field()] = msg
		lines = append(lines, msg)
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": strings.Join(lines, "\n"),
		"errors":  fields,
	})
}
