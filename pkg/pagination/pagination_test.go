package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"zero page falls back", "page=0", 1, 20, 0},
		{"negative limit falls back", "limit=-5", 1, 20, 0},
		{"limit is capped", "limit=5000", 1, 100, 0},
		{"garbage falls back", "page=x&limit=y", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseQuery(t, tt.query)
			require.Equal(t, tt.page, p.Page)
			require.Equal(t, tt.limit, p.Limit)
			require.Equal(t, tt.offset, p.Offset)
		})
	}
}
