package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openers maps GOOS to the command that hands a URL to the desktop.
var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser opens url (a release's cover art, say) in the default browser without waiting for it.
func OpenBrowser(url string) error {
	argv, ok := openers[getRuntime()]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", getRuntime())
	}

	cmd := exec.Command(argv[0], append(argv[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
