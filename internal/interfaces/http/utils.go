package httpinterface

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", errInvalidParam, err))
		return false
	}
	return true
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", errInvalidParam, name))
		return 0, false
	}
	return n, true
}

func uintQuery(c *gin.Context, name string) (uint64, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", errInvalidParam, name))
		return 0, false
	}
	return n, true
}

// pageQuery returns the page requested with the page and page_size query
// params, or nil if none is given.
func pageQuery(c *gin.Context) (*domain.Page, bool) {
	if c.Query("page") == "" && c.Query("page_size") == "" {
		return nil, true
	}
	number, ok := uintQuery(c, "page")
	if !ok {
		return nil, false
	}
	size, ok := uintQuery(c, "page_size")
	if !ok {
		return nil, false
	}
	page := domain.NewPage(int(number), int(size))
	return &page, true
}
