package query

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/MeKo-Tech/globetex/internal/presets"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

// PresetKey names the parameter that selects a stored preset.
const PresetKey = "preset"

// ErrPresetMode is returned when a preset is applied to the wrong endpoint.
var ErrPresetMode = errors.New("preset mode mismatch")

// WithPreset overlays values on the stored parameters of p. Every key in
// values except PresetKey wins over the stored one.
func WithPreset(p presets.Preset, mode synth.Mode, values url.Values) (url.Values, error) {
	if pm, err := synth.ParseMode(p.Mode); err != nil || pm != mode {
		return nil, fmt.Errorf("%w: preset %q is for %q, not %q", ErrPresetMode, p.Name, p.Mode, mode)
	}
	stored, err := p.Values()
	if err != nil {
		return nil, err
	}
	override := make(url.Values, len(values))
	for k, v := range values {
		if k != PresetKey {
			override[k] = v
		}
	}
	return Merge(stored, override), nil
}
