package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCustodyEventMutationIsDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// the mutation routes never reach the service
	router := gin.New()
	NewEvidenceHandler(nil).RegisterRoutes(router.Group(""))

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		req := httptest.NewRequest(method, "/material-evidence-events/00000000-0000-0000-0000-000000000001", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusForbidden, w.Code, "%s should be denied, not unrouted", method)
	}
}
