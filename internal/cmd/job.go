package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/presets"
	"github.com/MeKo-Tech/globetex/internal/query"
	"github.com/MeKo-Tech/globetex/internal/raster"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

// job is one texture to produce, resolved from flags, presets and params.
type job struct {
	mode   synth.Mode
	field  synth.FieldParams
	clouds synth.NoiseParams
	format encode.Format
	thumb  int
	key    string
}

// filename is the canonical output name for the job.
func (j job) filename() string {
	return j.key + "." + j.format.Ext()
}

// parseParams accepts a query string, optionally with a leading '?', or
// whitespace separated key=value pairs.
func parseParams(raw string) (url.Values, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	if raw == "" {
		return url.Values{}, nil
	}
	if !strings.Contains(raw, "&") {
		raw = strings.Join(strings.Fields(raw), "&")
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid params %q: %w", raw, err)
	}
	return v, nil
}

// resolveJob builds a job for mode. When preset is set, its stored params
// are loaded from the preset database and raw overrides them.
func resolveJob(ctx context.Context, modeName, raw, preset string) (job, error) {
	mode, err := synth.ParseMode(strings.ToLower(strings.TrimSpace(modeName)))
	if err != nil {
		return job{}, err
	}
	values, err := parseParams(raw)
	if err != nil {
		return job{}, err
	}

	if preset != "" {
		store, err := presets.Open(viper.GetString("presets_db"))
		if err != nil {
			return job{}, err
		}
		defer store.Close()

		p, err := store.Get(ctx, preset)
		if err != nil {
			return job{}, err
		}
		if values, err = query.WithPreset(p, mode, values); err != nil {
			return job{}, err
		}
	}

	return jobFromValues(mode, values)
}

func jobFromValues(mode synth.Mode, values url.Values) (job, error) {
	j := job{mode: mode, thumb: query.Thumb(values)}
	var err error
	if mode == synth.ModeBump {
		j.field, err = query.Field(values)
		j.format = j.field.Format
		j.key = j.field.Key()
	} else {
		j.clouds, err = query.Noise(values)
		j.format = j.clouds.Format
		j.key = j.clouds.Key()
	}
	if err != nil {
		return job{}, err
	}
	if j.thumb > 0 {
		j.key = synth.CacheKey(mode, j.key, "thumb", j.thumb)
	}
	return j, nil
}

// render synthesizes the job and writes the encoded image to w.
func (j job) render(ctx context.Context, w io.Writer, opts encode.Options, synthOpts ...synth.Option) (int, error) {
	var (
		buf *raster.Buffer
		err error
	)
	if j.mode == synth.ModeBump {
		buf, err = synth.SynthesizeField(ctx, j.field, synthOpts...)
	} else {
		buf, err = synth.SynthesizeNoiseField(ctx, j.clouds, synthOpts...)
	}
	if err != nil {
		return 0, err
	}

	var img image.Image
	if j.thumb > 0 {
		img, err = encode.Thumbnail(buf, j.thumb)
	} else {
		img, err = encode.Image(buf)
	}
	if err != nil {
		return 0, err
	}

	var out bytes.Buffer
	if err := encode.EncodeImage(&out, img, j.format, opts); err != nil {
		return 0, err
	}
	n, err := w.Write(out.Bytes())
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", j.format, err)
	}
	return n, nil
}

// height is the number of rows the job renders before any thumbnailing.
func (j job) height() int {
	if j.mode == synth.ModeBump {
		return j.field.Grid.Height
	}
	return j.clouds.Grid.Height
}
