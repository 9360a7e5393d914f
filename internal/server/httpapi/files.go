package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/dmitrijs2005/coursekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	filesField = "files"
	// room for multipart boundaries and part headers on top of the file
	multipartOverhead = 1 << 20
)

type filesBody struct {
	Files []models.StoredMedia `json:"files"`
}

type removeFileBody struct {
	PublicID string `json:"publicId"`
}

func (h *Handler) uploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.media.MaxUploadBytes()+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, common.NewValidationError(filesField, "request body too large"))
			return
		}
		writeError(c, common.NewValidationError(filesField, "malformed multipart body"))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File[filesField]
	if len(headers) == 0 {
		writeError(c, common.NewValidationError(filesField, "must not be empty"))
		return
	}

	files := make([]services.MediaFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			writeError(c, err)
			return
		}
		files = append(files, services.MediaFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	defer closeAll(files)

	stored, err := h.media.Upload(c.Request.Context(), files)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, filesBody{Files: stored})
}

func closeAll(files []services.MediaFile) {
	for _, f := range files {
		if cl, ok := f.Body.(io.Closer); ok {
			_ = cl.Close()
		}
	}
}

func (h *Handler) removeFile(c *gin.Context) {
	var in removeFileBody
	if !bindJSON(c, &in) {
		return
	}
	if err := h.media.Remove(c.Request.Context(), in.PublicID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
