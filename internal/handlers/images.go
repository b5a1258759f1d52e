package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"interior-design-backend/internal/models"
)

const maxImageSize = 20 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// readImage reads an uploaded image from a multipart form field.
func readImage(c *gin.Context, field string) (models.ImagePayload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("missing %s file: %w", field, err)
	}
	if header.Size > maxImageSize {
		return models.ImagePayload{}, fmt.Errorf("%s is larger than %d MB", header.Filename, maxImageSize>>20)
	}

	src, err := header.Open()
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	if len(data) == 0 {
		return models.ImagePayload{}, fmt.Errorf("%s is empty", header.Filename)
	}

	mimeType := strings.Split(http.DetectContentType(data), ";")[0]
	if !allowedImageTypes[mimeType] {
		return models.ImagePayload{}, fmt.Errorf("unsupported image type %s", mimeType)
	}

	return models.ImagePayload{MimeType: mimeType, Data: data}, nil
}
