package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	List(ctx context.Context, args []string) error
	Load(ctx context.Context, args []string) error
	Reload(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	AddSection(ctx context.Context, args []string) error
	RenameSection(ctx context.Context, args []string) error
	CancelSection(ctx context.Context, args []string) error
	DeleteSection(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	AddLesson(ctx context.Context, args []string) error
	EditLesson(ctx context.Context, args []string) error
	AttachMedia(ctx context.Context, args []string) error
	RemoveMedia(ctx context.Context, args []string) error
	DiscardLesson(ctx context.Context, args []string) error
	DeleteLesson(ctx context.Context, args []string) error
	Sweep(ctx context.Context, args []string) error
}

const helpText = `Commands (positions as shown by 'list'):
  list | l                 show the outline
  load                     fetch sections, keeping local edits
  reload                   discard local edits and fetch everything
  open <s>                 load the lessons of section s
  addsection               create a section
  rename <s>               retitle section s
  cancel <s>               close the section editor without saving
  rmsection <s>            delete section s with its lessons
  addlesson <s>            create a lesson in section s
  edit <s> <l>             edit lesson l of section s
  media <s> <l> <file>     upload a video for the lesson
  unmedia <s> <l>          detach the lesson's media
  save <s> [<l>]           commit a section or lesson
  discard <s> <l>          drop unsaved lesson changes
  rmlesson <s> <l>         delete a lesson
  sweep                    release uploads never saved to a lesson
  exit | quit`

// runREPL reads commands from reader until EOF or "exit", dispatching each
// to a. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ck %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "load":
			cmdErr = a.Load(ctx, args)
		case "reload":
			cmdErr = a.Reload(ctx, args)
		case "open":
			cmdErr = a.Open(ctx, args)
		case "addsection":
			cmdErr = a.AddSection(ctx, args)
		case "rename":
			cmdErr = a.RenameSection(ctx, args)
		case "cancel":
			cmdErr = a.CancelSection(ctx, args)
		case "rmsection":
			cmdErr = a.DeleteSection(ctx, args)
		case "save":
			cmdErr = a.Save(ctx, args)
		case "addlesson":
			cmdErr = a.AddLesson(ctx, args)
		case "edit":
			cmdErr = a.EditLesson(ctx, args)
		case "media":
			cmdErr = a.AttachMedia(ctx, args)
		case "unmedia":
			cmdErr = a.RemoveMedia(ctx, args)
		case "discard":
			cmdErr = a.DiscardLesson(ctx, args)
		case "rmlesson":
			cmdErr = a.DeleteLesson(ctx, args)
		case "sweep":
			cmdErr = a.Sweep(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
