// Package httpapi exposes the curriculum and media services as the REST
// API consumed by the authoring client.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

type Handler struct {
	curriculum services.CurriculumService
	media      services.MediaService
	log        logging.Logger
}

func NewHandler(curriculum services.CurriculumService, media services.MediaService, log logging.Logger) *Handler {
	return &Handler{curriculum: curriculum, media: media, log: log}
}

// NewRouter wires the routes. Everything under BasePath requires a bearer
// token; /healthz does not.
func NewRouter(h *Handler, secret []byte, log logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group(BasePath, authRequired(secret))

	api.GET("/sections/:courseId", h.listSections)
	api.POST("/sections", h.createSection)
	api.PUT("/sections/:id", h.updateSection)
	api.DELETE("/sections/:id", h.deleteSection)

	api.GET("/lessons/section/:sectionId", h.listLessons)
	api.POST("/lessons", h.createLesson)
	api.PUT("/lessons/:id", h.updateLesson)
	api.DELETE("/lessons/:id", h.deleteLesson)

	api.POST("/files/upload", h.uploadFiles)
	api.DELETE("/files/remove", h.removeFile)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "route not found"})
	})

	return r
}
