package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
)

func (s *Server) ListCategories(c *gin.Context) {
	resp, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req categorydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (s *Server) ListProductCategories(c *gin.Context) {
	resp, err := s.categorySvc.ListForProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (s *Server) ListAvailableCategories(c *gin.Context) {
	resp, err := s.categorySvc.ListAvailable(c.Request.Context(), c.Param("id"), c.Query("search"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"categories": resp})
}

func (s *Server) AddProductCategory(c *gin.Context) {
	var req categorydomain.AssociateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Associate(c.Request.Context(), c.Param("id"), req.CategoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (s *Server) RemoveProductCategory(c *gin.Context) {
	categoryID, err := parseRequiredInt64(c.Query("categoryId"))
	if err != nil {
		AbortWithError(c, ErrInvalidCategoryID)
		return
	}

	if err := s.categorySvc.Dissociate(c.Request.Context(), c.Param("id"), categoryID); err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"categoryId": categoryID})
}

func (s *Server) ReplaceProductCategories(c *gin.Context) {
	var req categorydomain.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Replace(c.Request.Context(), c.Param("id"), req.CategoryIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}
