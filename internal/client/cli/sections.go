package cli

import (
	"context"
	"fmt"
)

func (a *App) List(ctx context.Context, args []string) error {
	renderTree(a.out, a.svc.Snapshot())
	return nil
}

func (a *App) Load(ctx context.Context, args []string) error {
	if _, err := a.svc.LoadSections(ctx); err != nil {
		return err
	}
	return a.List(ctx, nil)
}

// Reload drops local edits and re-reads everything from the backend.
func (a *App) Reload(ctx context.Context, args []string) error {
	out, err := a.svc.Reload(ctx)
	a.report(out)
	if err != nil {
		return err
	}
	return a.List(ctx, nil)
}

func (a *App) Open(ctx context.Context, args []string) error {
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	if _, err := a.svc.LoadLessonsForSection(ctx, sec.ID.LocalID()); err != nil {
		return err
	}
	return a.List(ctx, nil)
}

func (a *App) AddSection(ctx context.Context, args []string) error {
	out, err := a.svc.AddSection(ctx)
	if err != nil {
		return err
	}
	return a.titleSection(ctx, out.LocalID)
}

func (a *App) RenameSection(ctx context.Context, args []string) error {
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	return a.titleSection(ctx, sec.ID.LocalID())
}

// titleSection asks for a title and commits the section. On failure the
// editor stays open with the error shown in the outline.
func (a *App) titleSection(ctx context.Context, id string) error {
	title, err := a.ask("Section title")
	if err != nil {
		return err
	}
	if _, err := a.svc.RenameSection(ctx, id, title); err != nil {
		return err
	}
	return a.commitSection(ctx, id)
}

func (a *App) commitSection(ctx context.Context, id string) error {
	out, err := a.svc.CommitSection(ctx, id)
	if err != nil {
		return err
	}
	if sec, err := out.Tree.Section(id); err == nil {
		fmt.Fprintf(a.out, "Saved section %q.\n", sec.Title)
	}
	return nil
}

func (a *App) CancelSection(ctx context.Context, args []string) error {
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	_, err = a.svc.CancelSection(ctx, sec.ID.LocalID())
	return err
}

func (a *App) DeleteSection(ctx context.Context, args []string) error {
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	out, err := a.svc.DeleteSection(ctx, sec.ID.LocalID())
	a.report(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Section deleted.")
	return nil
}

// Save commits a section, or a lesson when two positions are given.
func (a *App) Save(ctx context.Context, args []string) error {
	if len(args) >= 2 {
		sec, l, err := a.lessonAt(args)
		if err != nil {
			return err
		}
		return a.commitLesson(ctx, sec.ID.LocalID(), l.ID.LocalID())
	}
	sec, err := a.sectionAt(args)
	if err != nil {
		return err
	}
	return a.commitSection(ctx, sec.ID.LocalID())
}

func (a *App) Sweep(ctx context.Context, args []string) error {
	n, err := a.svc.SweepUploads(ctx)
	fmt.Fprintf(a.out, "Released %d upload(s).\n", n)
	return err
}
