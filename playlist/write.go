package playlist

import (
	"fmt"

	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/filesystem"
)

// Write replaces the file at path with text. Readers never observe a half-written playlist.
func Write(path, text string) error {
	err := filesystem.WriteAtomic(path, "."+constant.App+"-*.m3u8", []byte(text), 0o644)
	if err != nil {
		return fmt.Errorf("write playlist %s: %w", path, err)
	}
	return nil
}
