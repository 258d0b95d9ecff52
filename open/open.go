// Package open hands a written playlist to a media player.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/streamcap/streamcap/constant"
)

// Start opens path with app, or with the system's default handler when app is
// empty, without waiting for the player to exit.
func Start(path, app string) error {
	cmd, ok := command(path, app)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func command(path, app string) (*exec.Cmd, bool) {
	if app != "" {
		switch runtime.GOOS {
		case constant.Windows:
			return exec.Command("cmd", "/C", "start", "", app, path), true
		case constant.Darwin:
			return exec.Command("open", "-a", app, path), true
		case constant.Linux, constant.Android:
			return exec.Command(app, path), true
		default:
			return nil, false
		}
	}

	switch runtime.GOOS {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", path), true
	case constant.Darwin:
		return exec.Command("open", path), true
	case constant.Linux:
		return exec.Command("xdg-open", path), true
	case constant.Android:
		return exec.Command("termux-open", path), true
	default:
		return nil, false
	}
}
