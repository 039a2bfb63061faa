package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	productsizedomain "github.com/smallbiznis/pistache/internal/productsize/domain"
)

func (s *Server) ListProductSizes(c *gin.Context) {
	sizes, err := s.sizeSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"sizes": sizes})
}

func (s *Server) CreateProductSize(c *gin.Context) {
	var req productsizedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	size, err := s.sizeSvc.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.respondWithSizes(c, http.StatusCreated, size)
}

func (s *Server) UpdateProductSize(c *gin.Context) {
	var req productsizedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	size, err := s.sizeSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.respondWithSizes(c, http.StatusOK, size)
}

func (s *Server) DeleteProductSize(c *gin.Context) {
	if err := s.sizeSvc.Delete(c.Request.Context(), c.Param("id"), c.Query("size")); err != nil {
		AbortWithError(c, err)
		return
	}
	s.respondWithSizes(c, http.StatusOK, nil)
}

// respondWithSizes answers a write with the product's full size list.
func (s *Server) respondWithSizes(c *gin.Context, status int, size *productsizedomain.ProductSize) {
	sizes, err := s.sizeSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	data := gin.H{"sizes": sizes}
	if size != nil {
		data["size"] = size
	}
	ok(c, status, data)
}
