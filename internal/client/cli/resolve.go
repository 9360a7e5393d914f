package cli

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

func position(arg string, n int, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("no %s %q (see 'list')", what, arg)
	}
	return i - 1, nil
}

// sectionAt resolves args[0] to a section of the current outline.
func (a *App) sectionAt(args []string) (models.Section, error) {
	if len(args) < 1 {
		return models.Section{}, fmt.Errorf("%w: <section>", errUsage)
	}
	sections := a.svc.Snapshot().Sections()
	i, err := position(args[0], len(sections), "section")
	if err != nil {
		return models.Section{}, err
	}
	return sections[i], nil
}

// lessonAt resolves args[0] and args[1] to a loaded lesson.
func (a *App) lessonAt(args []string) (models.Section, models.Lesson, error) {
	if len(args) < 2 {
		return models.Section{}, models.Lesson{}, fmt.Errorf("%w: <section> <lesson>", errUsage)
	}
	sec, err := a.sectionAt(args)
	if err != nil {
		return sec, models.Lesson{}, err
	}
	if !sec.LessonsLoaded {
		return sec, models.Lesson{}, fmt.Errorf("lessons of section %s are not loaded, 'open %s' first", args[0], args[0])
	}
	i, err := position(args[1], len(sec.Lessons), "lesson")
	if err != nil {
		return sec, models.Lesson{}, err
	}
	return sec, sec.Lessons[i], nil
}
