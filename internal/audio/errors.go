package audio

import (
	"errors"
	"fmt"
)

// ErrAutoplayBlocked is reported by an output when the platform refused to
// start playback without a user gesture.
var ErrAutoplayBlocked = errors.New("autoplay blocked")

// AssetUnavailableError reports a track that cannot be loaded or played.
// Playback continues in silence; the controller never sees this error.
type AssetUnavailableError struct {
	Track string
	Err   error
}

func (e *AssetUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("asset unavailable: %s: %v", e.Track, e.Err)
	}
	return fmt.Sprintf("asset unavailable: %s", e.Track)
}

func (e *AssetUnavailableError) Unwrap() error {
	return e.Err
}

// IsAssetUnavailable reports whether err wraps an AssetUnavailableError.
func IsAssetUnavailable(err error) bool {
	var ae *AssetUnavailableError
	return errors.As(err, &ae)
}
