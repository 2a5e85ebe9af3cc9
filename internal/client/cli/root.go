package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userEmail != "" {
		s = a.userEmail
	}
	if a.filter != "" {
		s = s + " filter:" + a.filter
	}
	if id, playing, _, _ := a.player.Now(); id != "" {
		if playing {
			s = s + " ▶"
		} else {
			s = s + " ⏸"
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// Root runs the read-eval-print loop until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to Caminho (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("caminho %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()

		case "login":
			a.Login(ctx)

		case "list", "l":
			a.list(ctx, strings.Join(args, " "))
		case "refresh":
			a.refresh(ctx)

		case "play":
			a.play(ctx, args)
		case "pause":
			a.player.Pause(ctx)
		case "resume":
			if err := a.player.Resume(ctx); err != nil {
				fmt.Println("nothing to resume")
			}
		case "next":
			a.player.Advance(ctx)
		case "prev":
			a.player.Previous(ctx)
		case "seek":
			a.seek(args)
		case "now":
			a.now()

		case "new":
			a.newDraft(args)
		case "edit":
			a.editDraft(args)
		case "set":
			a.setField(args)
		case "image":
			a.attachImage(ctx)
		case "audio":
			a.attachAudio(ctx)
		case "rec":
			a.record(ctx)
		case "draft":
			a.showDraft()
		case "submit":
			a.submit(ctx)
		case "cancel":
			a.author.Cancel()
			fmt.Println("Draft discarded")

		case "push":
			a.pushCmd(ctx, args)

		case "exit", "quit":
			fmt.Println("Até logo!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	if !a.isLoggedIn() {
		fmt.Println("Available commands: login, exit")
		return
	}
	fmt.Println("Catalogue:  (l)ist [filter], refresh")
	fmt.Println("Playback:   play <n>, pause, resume, next, prev, seek <sec>, now")
	fmt.Println("Authoring:  new <type>, edit <n>, set <field>, image, audio, rec, draft, submit, cancel")
	fmt.Println("Push:       push on|off|status")
	fmt.Println("Other:      help, exit")
}
