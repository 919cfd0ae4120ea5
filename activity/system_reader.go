package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

var errNoWindowSource = errors.New("no supported window source available")

// SystemReader asks the desktop environment for the focused window. It shells
// out to whatever the platform offers: hyprctl, xdotool, or osascript.
type SystemReader struct {
	goos        string
	lookPath    func(file string) (string, error)
	run         func(ctx context.Context, name string, args ...string) ([]byte, error)
	processName func(ctx context.Context, pid int32) (string, error)
}

func NewSystemReader() *SystemReader {
	return &SystemReader{
		goos:        runtime.GOOS,
		lookPath:    exec.LookPath,
		run:         runCommand,
		processName: processNameByPID,
	}
}

func (r *SystemReader) ActiveWindow(ctx context.Context) (string, string, error) {
	switch r.goos {
	case "darwin":
		return r.macOS(ctx)
	case "linux", "freebsd", "openbsd":
		if _, err := r.lookPath("hyprctl"); err == nil {
			if app, title, err := r.hyprland(ctx); err == nil {
				return app, title, nil
			}
		}
		if _, err := r.lookPath("xdotool"); err == nil {
			return r.x11(ctx)
		}
	}
	return "", "", fmt.Errorf("%w on %s", errNoWindowSource, r.goos)
}

func (r *SystemReader) hyprland(ctx context.Context) (string, string, error) {
	out, err := r.run(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return "", "", fmt.Errorf("hyprctl failed: %w", err)
	}

	var win struct {
		Class string `json:"class"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(out, &win); err != nil {
		return "", "", fmt.Errorf("failed to decode hyprctl output: %w", err)
	}
	if win.Class == "" {
		return appFromTitle(win.Title), win.Title, nil
	}
	return win.Class, win.Title, nil
}

func (r *SystemReader) x11(ctx context.Context) (string, string, error) {
	out, err := r.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return "", "", fmt.Errorf("xdotool getwindowname failed: %w", err)
	}
	title := strings.TrimSpace(string(out))

	pidOut, err := r.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err == nil {
		if pid, perr := strconv.ParseInt(strings.TrimSpace(string(pidOut)), 10, 32); perr == nil {
			if name, nerr := r.processName(ctx, int32(pid)); nerr == nil && name != "" {
				return appFromProcessName(name), title, nil
			}
		}
	}
	return appFromTitle(title), title, nil
}

func (r *SystemReader) macOS(ctx context.Context) (string, string, error) {
	out, err := r.run(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`)
	if err != nil {
		return "", "", fmt.Errorf("osascript front app failed: %w", err)
	}
	app := strings.TrimSpace(string(out))

	// window title needs accessibility permission; fall back to the app name
	title := app
	if out, err := r.run(ctx, "osascript", "-e",
		`tell application "System Events" to tell (first application process whose frontmost is true) to get name of front window`); err == nil {
		if t := strings.TrimSpace(string(out)); t != "" {
			title = t
		}
	}
	return app, title, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func processNameByPID(ctx context.Context, pid int32) (string, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return proc.NameWithContext(ctx)
}

// appFromProcessName turns "code.exe" or "firefox" into "Code" / "Firefox"
func appFromProcessName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		name = name[:len(name)-len(".exe")]
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// appFromTitle guesses the app when the platform only gives us a title.
// "Slack – #general" names the app first; "main.go - Visual Studio Code" last.
func appFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if i := strings.Index(title, " – "); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	if i := strings.LastIndex(title, " - "); i >= 0 {
		return strings.TrimSpace(title[i+len(" - "):])
	}
	if fields := strings.Fields(title); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
