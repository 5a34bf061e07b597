package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "filmdash_flash"

// Flash categories, used as CSS classes
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

// SetFlash queues a message for the next page the browser loads. gin
// escapes cookie values on write and unescapes them on read.
func SetFlash(c *gin.Context, category, message string) {
	c.SetCookie(flashCookie, category+"|"+message, 0, "/", "", false, true)
}

// Flashes pops the queued message, if any
func Flashes(c *gin.Context) []Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	category, message, ok := strings.Cut(raw, "|")
	if !ok {
		return []Flash{{Category: FlashInfo, Message: raw}}
	}
	return []Flash{{Category: category, Message: message}}
}
