//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"syscall/js"

	"github.com/MeKo-Tech/globetex/internal/query"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

// KeyRequest is the JSON accepted by globetexCacheKey.
type KeyRequest struct {
	Mode   string            `json:"mode"`
	Params map[string]string `json:"params"`
}

// cacheKey lets browser code compute the ETag and canonical filename for a
// texture before asking a `globetex serve` backend for it. Rendering itself
// stays on the server.
func cacheKey(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "missing arguments"}
	}

	var req KeyRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}

	mode, err := synth.ParseMode(req.Mode)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	values := url.Values{}
	for k, v := range req.Params {
		values.Set(k, v)
	}

	var (
		key  string
		ext  string
		path string
	)
	if mode == synth.ModeBump {
		p, err := query.Field(values)
		if err != nil {
			return map[string]interface{}{"error": err.Error()}
		}
		key, ext, path = p.Key(), p.Format.Ext(), "/bumpmap"
	} else {
		p, err := query.Noise(values)
		if err != nil {
			return map[string]interface{}{"error": err.Error()}
		}
		key, ext, path = p.Key(), p.Format.Ext(), "/clouds"
	}
	if thumb := query.Thumb(values); thumb > 0 {
		key = synth.CacheKey(mode, key, "thumb", thumb)
	}

	return map[string]interface{}{
		"key":      key,
		"filename": key + "." + ext,
		"url":      path + "?" + values.Encode(),
	}
}

func initModule(this js.Value, args []js.Value) interface{} {
	fmt.Println("globetex WASM module initialized")
	return map[string]interface{}{"status": "ready"}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("globetexCacheKey", js.FuncOf(cacheKey))
	js.Global().Set("globetexInit", js.FuncOf(initModule))

	fmt.Println("globetex WASM module loaded")
	<-c
}
