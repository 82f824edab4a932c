package loader_test

import (
	"testing"

	"translation-manager/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	loaded  bool
	err     error
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestLoadAllSkipsDisabledFeatures(t *testing.T) {
	app := fiber.New()
	mgr := loader.NewManager()

	enabled := &stubFeature{name: "on", enabled: true}
	disabled := &stubFeature{name: "off", enabled: false}
	mgr.Register(enabled)
	mgr.Register(disabled)

	err := mgr.LoadAll(app)
	assert.NoError(t, err)
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
}

func TestLoadAllPropagatesError(t *testing.T) {
	app := fiber.New()
	mgr := loader.NewManager()
	mgr.Register(&stubFeature{name: "broken", enabled: true, err: assert.AnError})

	err := mgr.LoadAll(app)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
