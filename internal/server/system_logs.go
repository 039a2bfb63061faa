package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
)

func (s *Server) ListSystemLogs(c *gin.Context) {
	var query systemlogdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.systemLogSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}
