//go:build !(js && wasm)

package presets

import _ "modernc.org/sqlite" // SQLite driver
