package install

import (
	"runtime"
	"strings"
	"testing"
)

func TestExtractCommand(t *testing.T) {
	archive := "/maps/Rings/rings.zip"
	dest := "/maps/Rings"

	name, args := extractCommand(archive, dest)

	if runtime.GOOS == "windows" {
		if name != "powershell" {
			t.Fatalf("name = %q, want powershell", name)
		}
		if len(args) != 3 || args[0] != "-NoProfile" || args[1] != "-Command" {
			t.Fatalf("args = %v, want -NoProfile -Command <script>", args)
		}
		script := args[2]
		if !strings.Contains(script, "Expand-Archive") || !strings.Contains(script, archive) || !strings.Contains(script, dest) {
			t.Errorf("script = %q, want Expand-Archive with both paths", script)
		}
		return
	}

	if name != "unzip" {
		t.Fatalf("name = %q, want unzip", name)
	}
	want := []string{"-o", archive, "-d", dest}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}
