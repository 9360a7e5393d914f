package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/client/services"
	"github.com/dmitrijs2005/coursekeeper/internal/filex"
)

// AddLesson walks the author through a new lesson and commits it.
func (a *App) AddLesson(ctx context.Context, args []string) error {
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	sid := sec.ID.LocalID()

	kind, err := a.ask("Lesson type (VIDEO or FILE, empty for VIDEO)")
	if err != nil {
		return err
	}
	out, err := a.svc.AddLesson(ctx, sid, models.LessonType(kind))
	if err != nil {
		return err
	}
	lid := out.LocalID

	if err := a.fillLesson(ctx, sid, lid, false); err != nil {
		return err
	}

	_, l, err := a.svc.Snapshot().Lesson(sid, lid)
	if err != nil {
		return err
	}
	if l.Content.Type == models.LessonTypeVideo {
		path, err := a.ask("Video file (empty to skip)")
		if err != nil {
			return err
		}
		if path != "" {
			if err := a.attach(ctx, sid, lid, path); err != nil {
				return err
			}
		}
	}
	return a.commitLesson(ctx, sid, lid)
}

// fillLesson asks for title and description. With keep set, empty answers
// leave the field as it is.
func (a *App) fillLesson(ctx context.Context, sid, lid string, keep bool) error {
	title, err := a.ask("Lesson title")
	if err != nil {
		return err
	}
	desc, err := a.ask("Short description")
	if err != nil {
		return err
	}

	var patch services.LessonPatch
	if title != "" || !keep {
		patch.Title = &title
	}
	if desc != "" || !keep {
		patch.ShortDesc = &desc
	}
	_, err = a.svc.UpdateLesson(ctx, sid, lid, patch)
	return err
}

func (a *App) EditLesson(ctx context.Context, args []string) error {
	sec, l, err := a.lessonAt(args)
	if err != nil {
		return err
	}
	sid, lid := sec.ID.LocalID(), l.ID.LocalID()
	if err := a.fillLesson(ctx, sid, lid, true); err != nil {
		return err
	}
	return a.commitLesson(ctx, sid, lid)
}

func (a *App) attach(ctx context.Context, sid, lid, path string) error {
	m, err := filex.OpenMedia(path)
	if err != nil {
		return err
	}
	defer m.Close()

	fmt.Fprintf(a.out, "Uploading %s (%d bytes)...\n", m.Name, m.Size)
	out, err := a.svc.AttachMedia(ctx, sid, lid, models.MediaFile{
		Name:        m.Name,
		ContentType: m.ContentType,
		Size:        m.Size,
		Body:        m.File,
	})
	a.report(out)
	return err
}

// AttachMedia stages a new video for a lesson; 'save' commits it.
func (a *App) AttachMedia(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: <section> <lesson> <file>", errUsage)
	}
	sec, l, err := a.lessonAt(args)
	if err != nil {
		return err
	}
	if err := a.attach(ctx, sec.ID.LocalID(), l.ID.LocalID(), args[2]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Media staged, 'save %s %s' to keep it.\n", args[0], args[1])
	return nil
}

func (a *App) RemoveMedia(ctx context.Context, args []string) error {
	sec, l, err := a.lessonAt(args)
	if err != nil {
		return err
	}
	out, err := a.svc.RemoveMedia(ctx, sec.ID.LocalID(), l.ID.LocalID())
	a.report(out)
	return err
}

func (a *App) commitLesson(ctx context.Context, sid, lid string) error {
	out, err := a.svc.CommitLesson(ctx, sid, lid)
	a.report(out)
	if err != nil {
		return err
	}
	if _, l, err := out.Tree.Lesson(sid, lid); err == nil {
		fmt.Fprintf(a.out, "Saved lesson %q.\n", l.Content.Title)
	}
	return nil
}

func (a *App) DiscardLesson(ctx context.Context, args []string) error {
	sec, l, err := a.lessonAt(args)
	if err != nil {
		return err
	}
	out, err := a.svc.DiscardLesson(ctx, sec.ID.LocalID(), l.ID.LocalID())
	a.report(out)
	return err
}

func (a *App) DeleteLesson(ctx context.Context, args []string) error {
	sec, l, err := a.lessonAt(args)
	if err != nil {
		return err
	}
	out, err := a.svc.DeleteLesson(ctx, sec.ID.LocalID(), l.ID.LocalID())
	a.report(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Lesson deleted.")
	return nil
}
