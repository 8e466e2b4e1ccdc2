package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// setLinkHeaders adds RFC 8288 first/prev/next/last links. Other query
// parameters of the request are carried over.
func setLinkHeaders(c *gin.Context, offset, limit, total int) {
	if limit <= 0 {
		return
	}

	link := func(off int, rel string) string {
		q := url.Values{}
		for k, v := range c.Request.URL.Query() {
			q[k] = v
		}
		q.Set("offset", strconv.Itoa(off))
		q.Set("limit", strconv.Itoa(limit))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, c.Request.URL.Path, q.Encode(), rel)
	}

	links := []string{link(0, "first")}
	if offset > 0 {
		links = append(links, link(max(offset-limit, 0), "prev"))
	}
	if offset+limit < total {
		links = append(links, link(offset+limit, "next"))
	}
	links = append(links, link(max(total-limit, 0), "last"))

	c.Header("Link", strings.Join(links, ", "))
}
