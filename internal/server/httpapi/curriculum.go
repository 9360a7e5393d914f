package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/dmitrijs2005/coursekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type sectionsBody struct {
	Sections []*models.Section `json:"sections"`
}

type lessonsBody struct {
	Lessons []*models.Lesson `json:"lessons"`
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, common.NewValidationError("body", "malformed JSON"))
		return false
	}
	return true
}

func (h *Handler) listSections(c *gin.Context) {
	sections, err := h.curriculum.ListSections(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sectionsBody{Sections: sections})
}

func (h *Handler) createSection(c *gin.Context) {
	var in services.NewSection
	if !bindJSON(c, &in) {
		return
	}
	section, err := h.curriculum.CreateSection(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *Handler) updateSection(c *gin.Context) {
	var in services.UpdateSection
	if !bindJSON(c, &in) {
		return
	}
	section, err := h.curriculum.UpdateSection(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *Handler) deleteSection(c *gin.Context) {
	if err := h.curriculum.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listLessons(c *gin.Context) {
	lessons, err := h.curriculum.ListLessons(c.Request.Context(), c.Param("sectionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessonsBody{Lessons: lessons})
}

func (h *Handler) createLesson(c *gin.Context) {
	var in services.NewLesson
	if !bindJSON(c, &in) {
		return
	}
	lesson, err := h.curriculum.CreateLesson(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *Handler) updateLesson(c *gin.Context) {
	var in services.UpdateLesson
	if !bindJSON(c, &in) {
		return
	}
	lesson, err := h.curriculum.UpdateLesson(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) deleteLesson(c *gin.Context) {
	if err := h.curriculum.DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
