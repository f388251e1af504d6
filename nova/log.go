package nova

import "github.com/rs/zerolog"

var (
	logger       = zerolog.Nop()
	fallbackHook func(TypeID)
)

// SetLogger routes the package's warnings to l. Call it before decoding.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "nova").Logger()
}

// SetDecodeFallbackHook registers fn to be called whenever a stored value
// has no entry in its type and is shown as the default instead.
func SetDecodeFallbackHook(fn func(TypeID)) {
	fallbackHook = fn
}
