package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"

	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/client/push"
)

// filePlatform is the terminal stand-in for a browser push service. It keeps
// permission and subscription state in a small JSON file so revoking it
// out-of-band (editing or deleting the file) behaves like a real platform.
type filePlatform struct {
	path string
}

type platformState struct {
	Permission   push.Permission          `json:"permission"`
	Subscription *models.PushSubscription `json:"subscription,omitempty"`
}

func newFilePlatform(path string) *filePlatform {
	return &filePlatform{path: path}
}

func (p *filePlatform) load() (platformState, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return platformState{Permission: push.PermissionDefault}, nil
	}
	if err != nil {
		return platformState{}, fmt.Errorf("reading push state: %w", err)
	}

	var st platformState
	if err := json.Unmarshal(data, &st); err != nil {
		return platformState{}, fmt.Errorf("decoding push state: %w", err)
	}
	if st.Permission == "" {
		st.Permission = push.PermissionDefault
	}
	return st, nil
}

func (p *filePlatform) save(st platformState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("writing push state: %w", err)
	}
	return nil
}

func (p *filePlatform) Permission(ctx context.Context) (push.Permission, error) {
	st, err := p.load()
	if err != nil {
		return "", err
	}
	return st.Permission, nil
}

// Subscribe grants permission (the terminal has no prompt to deny) and mints
// a subscription keyed to the application.
func (p *filePlatform) Subscribe(ctx context.Context, applicationKey string) (*models.PushSubscription, error) {
	st, err := p.load()
	if err != nil {
		return nil, err
	}
	if st.Permission == push.PermissionDenied {
		return nil, errors.New("notification permission denied")
	}

	st.Permission = push.PermissionGranted
	st.Subscription = &models.PushSubscription{
		Endpoint: "https://push.caminho.app/v1/" + uuid.NewString(),
		Keys: map[string]string{
			"p256dh": randomKey(32),
			"auth":   randomKey(16),
		},
	}
	if err := p.save(st); err != nil {
		return nil, err
	}
	return st.Subscription, nil
}

func (p *filePlatform) GetSubscription(ctx context.Context) (*models.PushSubscription, error) {
	st, err := p.load()
	if err != nil {
		return nil, err
	}
	return st.Subscription, nil
}

func (p *filePlatform) Unsubscribe(ctx context.Context, sub *models.PushSubscription) error {
	st, err := p.load()
	if err != nil {
		return err
	}
	st.Subscription = nil
	return p.save(st)
}

func randomKey(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
