package install

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Extractor unpacks a downloaded archive into a folder.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// CommandExtractor shells out to the platform unzip command. The exit
// code is the only signal observed; any output is folded into the
// error for reporting.
type CommandExtractor struct{}

func (CommandExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	name, args := extractCommand(archivePath, destDir)

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("extracting %s: %w: %s", filepath.Base(archivePath), err, detail)
		}
		return fmt.Errorf("extracting %s: %w", filepath.Base(archivePath), err)
	}
	return nil
}

func extractCommand(archivePath, destDir string) (string, []string) {
	if runtime.GOOS == "windows" {
		script := fmt.Sprintf("Expand-Archive -LiteralPath %q -DestinationPath %q -Force", archivePath, destDir)
		return "powershell", []string{"-NoProfile", "-Command", script}
	}
	return "unzip", []string{"-o", archivePath, "-d", destDir}
}
