package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/coursekeeper/internal/client/draft"
	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

func statusMark(s models.NodeStatus) string {
	if s == models.StatusPersisted {
		return ""
	}
	return " [" + s.String() + "]"
}

func orderMark(id models.Identity, orderNo int) string {
	if _, ok := models.BackendID(id); !ok {
		return "#-"
	}
	return fmt.Sprintf("#%d", orderNo)
}

// renderTree prints the outline with the positions commands take.
func renderTree(w io.Writer, t draft.Tree) {
	sections := t.Sections()
	if len(sections) == 0 {
		fmt.Fprintln(w, "No sections yet. Use 'addsection' to create one.")
		return
	}

	for i, sec := range sections {
		title := sec.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%d. %s  %s%s\n", i+1, title, orderMark(sec.ID, sec.OrderNo), statusMark(sec.Status))
		if sec.LastError != "" {
			fmt.Fprintf(w, "   ! %s\n", sec.LastError)
		}

		if !sec.LessonsLoaded {
			fmt.Fprintf(w, "   (lessons not loaded, 'open %d')\n", i+1)
			continue
		}
		for j, l := range sec.Lessons {
			title := l.Content.Title
			if strings.TrimSpace(title) == "" {
				title = "(untitled)"
			}
			media := ""
			if l.Content.Media != nil {
				media = ", media"
				if l.StagedMedia() != nil {
					media = ", new media"
				}
			}
			fmt.Fprintf(w, "   %d.%d %s (%s%s)  %s%s\n", i+1, j+1, title, l.Content.Type, media,
				orderMark(l.ID, l.OrderNo), statusMark(l.Status))
			if l.LastError != "" {
				fmt.Fprintf(w, "       ! %s\n", l.LastError)
			}
		}
	}
}

// summary is the short status shown in the prompt.
func summary(t draft.Tree) string {
	var unsaved, saving int
	for _, sec := range t.Sections() {
		if sec.Status.InFlight() {
			saving++
		} else if sec.IsEditing() {
			unsaved++
		}
		for _, l := range sec.Lessons {
			if l.Status.InFlight() {
				saving++
			} else if l.IsEditing() {
				unsaved++
			}
		}
	}

	s := fmt.Sprintf("%d sections", t.Len())
	if unsaved > 0 {
		s += fmt.Sprintf(", %d unsaved", unsaved)
	}
	if saving > 0 {
		s += fmt.Sprintf(", %d saving", saving)
	}
	return s
}
