package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caminho-app/caminho/internal/client/capture"
	"github.com/caminho-app/caminho/internal/client/content"
	"github.com/caminho-app/caminho/internal/client/intake"
	"github.com/caminho-app/caminho/internal/client/models"
)

func (a *App) newDraft(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: new <devocional|live|podcast|estudo|mentoria>")
		return
	}

	typ, ok := parseContentType(args[0])
	if !ok {
		fmt.Println("Unknown content type:", args[0])
		return
	}

	a.author.NewDraft(typ)
	fmt.Println("Started a new", args[0], "draft")
}

func (a *App) editDraft(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: edit <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.episodes) {
		fmt.Println("No such item; run 'list' first")
		return
	}

	a.author.EditDraft(a.episodes[n-1])
	fmt.Println("Editing", a.episodes[n-1].Title)
}

func (a *App) setField(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: set <title|subtitle|description|body|action|download|duration>")
		return
	}

	field := args[0]
	var value string
	var err error
	switch field {
	case "description", "body":
		value, err = GetMultiline(a.reader, "Enter "+field, os.Stdout)
	default:
		value, err = GetSimpleText(a.reader, "Enter "+field, os.Stdout)
	}
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	switch field {
	case "title":
		a.author.UpdateFields(func(f *models.ContentFields) { f.Title = value })
	case "subtitle":
		a.author.UpdateFields(func(f *models.ContentFields) { f.Subtitle = value })
	case "description":
		a.author.UpdateFields(func(f *models.ContentFields) { f.Description = value })
	case "body":
		a.author.UpdateFields(func(f *models.ContentFields) { f.ContentBody = value })
	case "action":
		a.author.UpdateFields(func(f *models.ContentFields) { f.ActionURL = value })
	case "download":
		a.author.UpdateFields(func(f *models.ContentFields) { f.DownloadResourceURL = value })
	case "duration":
		sec, err := strconv.Atoi(value)
		if err != nil {
			fmt.Println("Duration must be a number of seconds")
			return
		}
		a.author.SetDuration(sec)
	default:
		fmt.Println("Unknown field:", field)
	}
}

// attachImage sets the draft's image source: an http(s) value is used as an
// external URL, anything else is staged as a local file.
func (a *App) attachImage(ctx context.Context) {
	value, err := GetSimpleText(a.reader, "Image URL or file path (empty clears)", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	switch {
	case value == "":
		a.author.ClearImage()
		fmt.Println("Image cleared")
	case isURL(value):
		a.author.SetImageURL(value)
		fmt.Println("Image URL set")
	default:
		staged, err := a.intake.Accept(ctx, value, intake.KindImage)
		if err != nil {
			fmt.Println("File rejected:", err)
			return
		}
		a.author.StageImage(staged)
		fmt.Printf("Staged %s (%d bytes)\n", staged.Name, staged.Size)
	}
}

func (a *App) attachAudio(ctx context.Context) {
	value, err := GetSimpleText(a.reader, "Audio URL or file path (empty clears)", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	switch {
	case value == "":
		a.author.ClearAudio()
		fmt.Println("Audio cleared")
	case isURL(value):
		a.author.SetAudioURL(value)
		fmt.Println("Audio URL set")
	default:
		staged, err := a.intake.Accept(ctx, value, intake.KindAudio)
		if err != nil {
			fmt.Println("File rejected:", err)
			return
		}
		a.author.StageAudioFile(staged)
		if staged.Duration > 0 {
			fmt.Printf("Staged %s (%s)\n", staged.Name, staged.Duration)
		} else {
			fmt.Printf("Staged %s\n", staged.Name)
		}
	}
}

// record toggles the microphone: first call starts a session, second stops
// it and stages the clip on the draft.
func (a *App) record(ctx context.Context) {
	if a.recorder.State() != capture.StateRecording {
		if err := a.recorder.Start(ctx); err != nil {
			fmt.Println("Recording failed to start:", err)
			return
		}
		fmt.Println("Recording... type 'rec' again to stop")
		return
	}

	clip, err := a.recorder.Stop()
	if err != nil {
		fmt.Println("Recording failed:", err)
		return
	}
	if clip == nil {
		return
	}

	a.author.StageRecording(clip)
	fmt.Printf("Recorded %s of audio (%d bytes)\n", clip.Duration.Round(time.Second), len(clip.Data))
}

func (a *App) showDraft() {
	d := a.author.Draft()
	fmt.Printf("Type:     %s\n", d.Fields.Type)
	fmt.Printf("Title:    %s\n", d.Fields.Title)
	fmt.Printf("Subtitle: %s\n", d.Fields.Subtitle)
	fmt.Printf("Duration: %ds\n", d.Fields.Duration)
	fmt.Printf("Image:    %s\n", describeImage(d.Image))
	fmt.Printf("Audio:    %s\n", describeAudio(d.Audio))
}

func describeImage(src content.ImageSource) string {
	switch s := src.(type) {
	case content.ImageURL:
		return "url " + s.URL
	case content.ImageFile:
		return "file " + s.File.Name
	default:
		return "none"
	}
}

func describeAudio(src content.AudioSource) string {
	switch s := src.(type) {
	case content.AudioURL:
		return "url " + s.URL
	case content.AudioFile:
		return "file " + s.File.Name
	case content.AudioRecording:
		return fmt.Sprintf("recording (%d bytes)", len(s.Clip.Data))
	default:
		return "none"
	}
}

func (a *App) submit(ctx context.Context) {
	userID := a.api.UserID()
	if userID == "" {
		fmt.Println("Log in first")
		return
	}

	progress := func(label string) func(int) {
		last := -1
		return func(p int) {
			if p == last {
				return
			}
			last = p
			fmt.Printf("\r%s upload: %3d%%", label, p)
			if p == 100 {
				fmt.Println()
			}
		}
	}

	item, err := a.author.Submit(ctx, userID, progress("image"), progress("audio"))
	if err != nil {
		fmt.Println("Submit failed:", err)
		return
	}
	fmt.Printf("Saved %q (%s)\n", item.Title, item.ID)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
