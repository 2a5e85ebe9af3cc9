// Package cli implements the interactive terminal client: catalogue
// browsing, playback transport, content authoring and push settings.
package cli
