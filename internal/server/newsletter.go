package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	newsletterdomain "github.com/smallbiznis/pistache/internal/newsletter/domain"
)

func (s *Server) SubscribeNewsletter(c *gin.Context) {
	var req newsletterdomain.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.newsletterSvc.Subscribe(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	ok(c, status, resp)
}
