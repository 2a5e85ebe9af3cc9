package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (a *App) play(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: play <n>")
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.episodes) {
		fmt.Println("No such item; run 'list' first")
		return
	}

	it := a.episodes[n-1]
	if it.AudioURL == "" {
		fmt.Println("Item has no audio")
		return
	}

	if err := a.player.Play(ctx, it.ID); err != nil {
		fmt.Println("Play failed:", err)
	}
}

func (a *App) seek(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: seek <seconds>")
		return
	}
	sec, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println("Usage: seek <seconds>")
		return
	}
	a.player.Seek(sec)
}

func (a *App) now() {
	id, playing, pos, dur := a.player.Now()
	if id == "" {
		fmt.Println("Nothing playing")
		return
	}

	title := id
	for _, it := range a.episodes {
		if it.ID == id {
			title = it.Title
			break
		}
	}

	state := "paused"
	if playing {
		state = "playing"
	}
	fmt.Printf("%s — %s %d:%02d / %d:%02d\n", title, state,
		int(pos)/60, int(pos)%60, int(dur)/60, int(dur)%60)
}
