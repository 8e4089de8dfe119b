package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestUnassignMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/admin/assignments/not-a-pair", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "not-a-pair"}}

	handler.Unassign(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
