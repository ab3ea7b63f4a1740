// Package pagination normalizes the page/limit query parameters shared by
// every list endpoint. Ledger-style screens (vouchers, installments, the
// audit trail) page through long histories, so the cap is deliberately
// generous while still keeping a single request from dumping a whole table.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 25
	maxLimit     = 200
)

// Params is the normalized paging window for a list query.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the one-based page number to a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page and limit from the query string. Missing, malformed or
// non-positive values fall back to the defaults, and limit is clamped.
func Parse(c *gin.Context) Params {
	p := Params{Page: defaultPage, Limit: defaultLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
