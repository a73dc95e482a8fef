package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	classifier := cfg.GetClassifier()
	assert.Equal(t, core.ModeMultiBucket, classifier.Mode)
	assert.Equal(t, 20, classifier.IdentityLength)
	assert.Equal(t, []string{"just now", "minute", "hour", "today"}, classifier.RecencyHints)

	delegate, err := cfg.GetDelegate()
	require.NoError(t, err)
	assert.Equal(t, "endpoint", delegate.Provider)
	assert.Equal(t, 5*time.Second, delegate.Delay)
	assert.Equal(t, []string{"offer", "job", "urgent", "important"}, delegate.Keywords)

	browser, err := cfg.GetBrowser()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, browser.Debounce)
	assert.Equal(t, core.MethodRule, browser.Method)

	assert.Equal(t, "memory", cfg.GetStore().Type)
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.mode", "binary")
	v.Set("browser.method", "ai")
	v.Set("delegate.delay", "not-a-duration")
	cfg := NewFromViper(v)

	assert.Equal(t, core.ModeBinary, cfg.GetClassifier().Mode)

	browser, err := cfg.GetBrowser()
	require.NoError(t, err)
	assert.Equal(t, core.MethodAI, browser.Method)

	_, err = cfg.GetDelegate()
	assert.ErrorContains(t, err, "invalid delegate delay")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prioritizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
classifier:
  mode: binary
  important_contacts:
    - Jane Doe
delegate:
  provider: openai
  delay: 2s
notify:
  enabled: true
  to: [me@example.com]
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile())

	classifier := cfg.GetClassifier()
	assert.Equal(t, core.ModeBinary, classifier.Mode)
	assert.Equal(t, []string{"Jane Doe"}, classifier.ImportantContacts)
	assert.Equal(t, 20, classifier.IdentityLength, "unset keys keep their defaults")

	delegate, err := cfg.GetDelegate()
	require.NoError(t, err)
	assert.Equal(t, "openai", delegate.Provider)
	assert.Equal(t, 2*time.Second, delegate.Delay)

	notify := cfg.GetNotify()
	assert.True(t, notify.Enabled)
	assert.Equal(t, []string{"me@example.com"}, notify.To)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PRIORITIZER_STORE_TYPE", "sqlite")
	cfg := NewFromViper(NewEnvViper())
	assert.Equal(t, "sqlite", cfg.GetStore().Type)
}
