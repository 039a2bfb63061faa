package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pistache/internal/observability/logger"
	"github.com/smallbiznis/pistache/internal/storage"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"go.uber.org/zap"
)

func (s *Server) UploadMedia(c *gin.Context) {
	mediaCfg := s.storefront.Get().Media
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, mediaCfg.MaxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			AbortWithError(c, ErrFileTooLarge)
			return
		}
		AbortWithError(c, ErrFileRequired)
		return
	}
	if fh.Size > mediaCfg.MaxUploadBytes {
		AbortWithError(c, ErrFileTooLarge)
		return
	}

	contentType := mediaContentType(fh.Header.Get("Content-Type"))
	if !slices.Contains(mediaCfg.AllowedContentTypes, contentType) {
		AbortWithError(c, ErrUnsupportedMedia)
		return
	}

	target := strings.TrimSpace(c.PostForm("path"))
	if target == "" {
		target = path.Join(mediaCfg.PathPrefix, path.Base(fh.Filename))
	}

	var addRandomSuffix *bool
	if raw := strings.TrimSpace(c.PostForm("addRandomSuffix")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, newValidationError("addRandomSuffix", "invalid_add_random_suffix", "Valor de addRandomSuffix inválido"))
			return
		}
		addRandomSuffix = &parsed
	}

	file, err := fh.Open()
	if err != nil {
		AbortWithError(c, storage.ErrUploadFailed)
		return
	}
	defer file.Close()

	resp, err := s.storage.Upload(c.Request.Context(), file, target, storage.UploadOptions{
		ContentType:     contentType,
		AddRandomSuffix: addRandomSuffix,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordMedia(c.Request.Context(), "Arquivo enviado", map[string]any{
		"pathname": resp.Pathname,
		"size":     resp.Size,
	})
	ok(c, http.StatusCreated, resp)
}

func (s *Server) DeleteMedia(c *gin.Context) {
	pathname := strings.TrimSpace(c.Query("pathname"))
	if pathname == "" {
		AbortWithError(c, storage.ErrInvalidPath)
		return
	}
	if !s.storage.Delete(c.Request.Context(), pathname) {
		AbortWithError(c, storage.ErrNotFound)
		return
	}
	s.recordMedia(c.Request.Context(), "Arquivo removido", map[string]any{"pathname": pathname})
	ok(c, http.StatusOK, gin.H{"pathname": pathname})
}

func (s *Server) ServeMedia(c *gin.Context) {
	obj, err := s.storage.Open(c.Request.Context(), c.Param("pathname"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer obj.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj, nil)
}

func (s *Server) recordMedia(ctx context.Context, message string, metadata map[string]any) {
	if s.systemLogSvc == nil {
		return
	}
	if err := s.systemLogSvc.Record(ctx, systemlogdomain.RecordRequest{
		Level:    systemlogdomain.LevelInfo,
		Message:  message,
		Context:  "media",
		Metadata: metadata,
	}); err != nil {
		logger.FromContext(ctx).Warn("system log write failed", zap.Error(err))
	}
}

func mediaContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}
