package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(t *testing.T, rawQuery string) Params {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := parseQuery(t, "")

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestParseClampsLimit(t *testing.T) {
	p := parseQuery(t, "page=2&limit=5000")

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 200, p.Limit)
}

func TestParseRejectsMalformedValues(t *testing.T) {
	p := parseQuery(t, "page=abc&limit=-5")

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.Limit)
}

func TestOffsetFollowsPage(t *testing.T) {
	p := parseQuery(t, "page=4&limit=10")

	assert.Equal(t, 30, p.Offset())
}
