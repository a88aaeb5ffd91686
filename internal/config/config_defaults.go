package config

var defaults Settings

func init() {
	yaml := []byte(`version: v1

# How saved content is normalized. "preserve" keeps whatever style the
# document already uses.
editor:
  line-ending: preserve   # preserve | lf | crlf
  hard-break: preserve    # preserve | backslash | two-spaces

autosave:
  enabled: true
  interval-ms: 2000
  # Minimum gap since the last successful auto-save before another
  # one is attempted.
  debounce-ms: 5000

history:
  enabled: true
  # dir defaults to <state dir>/history when empty.
  dir: ""
  keep-manual: 50
  keep-auto: 20

# Cross-window coordination for OS file-drop events.
droplock:
  timeout-ms: 500

log:
  enabled: false
  path: ""
  verbose: false
`)

	cfg, err := ParseYAML(yaml)
	if err != nil {
		panic(err)
	}

	defaults = *cfg
}

// Default returns a copy of the built-in settings.
func Default() *Settings {
	cfg := defaults
	return &cfg
}
