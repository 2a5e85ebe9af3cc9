package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/client/playback"
)

// refresh fetches the catalogue from the backend and replaces the local
// cache snapshot.
func (a *App) refresh(ctx context.Context) {
	items, err := a.api.ListContentItems(ctx)
	if err != nil {
		fmt.Println("Refresh failed:", err)
		return
	}

	if a.store != nil {
		if err := a.store.Episodes.ReplaceAll(ctx, items); err != nil {
			a.log.Warn(ctx, "caching catalogue failed", "error", err)
		}
	}

	fmt.Printf("Fetched %d items\n", len(items))
	a.list(ctx, a.filter)
}

// list shows the catalogue narrowed by filter and makes the shown ordering
// the playback queue. The backend is tried first; the local cache serves
// when it is unreachable.
func (a *App) list(ctx context.Context, filter string) {
	items, err := a.api.ListContentItems(ctx)
	if err != nil {
		if a.store == nil {
			fmt.Println("Listing failed:", err)
			return
		}
		a.log.Warn(ctx, "backend unreachable, using cached catalogue", "error", err)
		items, err = a.store.Episodes.List(ctx)
		if err != nil {
			fmt.Println("Listing failed:", err)
			return
		}
	}

	a.filter = filter
	a.episodes = filterEpisodes(items, filter)
	a.syncQueue()

	if len(a.episodes) == 0 {
		fmt.Println("No items")
		return
	}
	for i, it := range a.episodes {
		dur := ""
		if it.Duration > 0 {
			dur = fmt.Sprintf(" [%d:%02d]", it.Duration/60, it.Duration%60)
		}
		fmt.Printf("%3d. (%s) %s%s\n", i+1, it.Type, it.Title, dur)
	}
}

// parseContentType matches a user-typed type name case-insensitively.
func parseContentType(s string) (models.ContentType, bool) {
	for _, t := range []models.ContentType{
		models.ContentTypeDevocional, models.ContentTypeLive, models.ContentTypePodcast,
		models.ContentTypeEstudo, models.ContentTypeMentoria,
	} {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// filterEpisodes narrows the catalogue: a content-type name filters by type,
// anything else is a case-insensitive text search over the title, subtitle
// and description.
func filterEpisodes(items []models.ContentItem, filter string) []models.ContentItem {
	if filter == "" {
		return items
	}

	typ, byType := parseContentType(filter)

	needle := strings.ToLower(filter)
	var out []models.ContentItem
	for _, it := range items {
		if byType {
			if it.Type == typ {
				out = append(out, it)
			}
			continue
		}
		haystack := strings.ToLower(it.Title + " " + it.Subtitle + " " + it.Description)
		if strings.Contains(haystack, needle) {
			out = append(out, it)
		}
	}
	return out
}

// syncQueue projects the displayed list into the player. Playable entries
// are the ones that actually carry audio.
func (a *App) syncQueue() {
	tracks := make([]playback.Track, 0, len(a.episodes))
	for _, it := range a.episodes {
		if it.AudioURL == "" {
			continue
		}
		tracks = append(tracks, playback.Track{
			ID:       it.ID,
			Title:    it.Title,
			AudioURL: it.AudioURL,
			Duration: it.Duration,
		})
	}
	a.player.SetQueue(tracks)
}
