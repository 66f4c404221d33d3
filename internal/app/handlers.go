package app

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageParams reads page/page_size query parameters. Bounds are applied by
// the storage layer.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}

func intQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}
