package handler

import (
	"net/http"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/media"
	"github.com/gin-gonic/gin"
)

const maxUploadRequestBytes = 64 << 20

// UploadImages stores every file of the multipart `images` field (or a single
// `image`) and returns gallery entries with empty captions.
func (a *API) UploadImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "No images found in upload")
		return
	}

	headers := form.File["images"]
	headers = append(headers, form.File["image"]...)
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "No images found in upload")
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, header := range headers {
		opened, err := header.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "Could not read "+header.Filename)
			return
		}
		defer opened.Close()
		files = append(files, media.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      opened,
		})
	}

	assets, err := media.UploadAll(c.Request.Context(), a.uploader, files)
	images := toGallery(assets)
	if err != nil {
		if len(images) == 0 {
			a.respondServiceError(c, err)
			return
		}
		a.logger.Warnw("partial upload", "stored", len(images), "requested", len(files), "error", err)
		c.JSON(apperr.HTTPStatus(err), gin.H{
			"error":  apperr.Message(err),
			"images": images,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}

func toGallery(assets []media.Asset) db.ImageList {
	images := make(db.ImageList, 0, len(assets))
	for _, asset := range assets {
		images = append(images, db.Image{URL: asset.URL})
	}
	return images
}
