package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"burncheck/internal/deps"
	"burncheck/internal/disc"
	"burncheck/internal/history"
	"burncheck/internal/preflight"
)

// verdict grades one line of `deps` or `status` output.
type verdict int

const (
	verdictNote verdict = iota
	verdictPass
	verdictWarn
	verdictFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var verdictStyles = map[verdict]struct{ tag, color string }{
	verdictNote: {"INFO", ansiBlue},
	verdictPass: {"OK", ansiGreen},
	verdictWarn: {"WARN", ansiYellow},
	verdictFail: {"ERROR", ansiRed},
}

const reportLabelWidth = 22

// reportLine renders as "  Label:   [TAG] detail".
type reportLine struct {
	label   string
	verdict verdict
	detail  string
}

func (l reportLine) render(colorize bool) string {
	style := verdictStyles[l.verdict]
	text := fmt.Sprintf("  %-*s [%s]", reportLabelWidth, l.label+":", style.tag)
	if l.detail != "" {
		text += " " + l.detail
	}
	if colorize {
		return style.color + text + ansiReset
	}
	return text
}

// report accumulates titled sections for one command's output.
type report struct {
	colorize bool
	out      []string
}

func (r *report) section(title string) {
	if len(r.out) > 0 {
		r.out = append(r.out, "")
	}
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if r.colorize {
		heading, rule = ansiBlue+heading+ansiReset, ansiBlue+rule+ansiReset
	}
	r.out = append(r.out, heading, rule)
}

func (r *report) add(lines ...reportLine) {
	for _, l := range lines {
		r.out = append(r.out, l.render(r.colorize))
	}
}

func (r *report) String() string { return strings.Join(r.out, "\n") }

// toolLines leads with a summary and ends with the commands to install
// when required tools are missing. Missing optional tools only warn.
func toolLines(statuses []deps.Status) []reportLine {
	missing := deps.MissingRequired(statuses)
	lines := make([]reportLine, 0, len(statuses)+2)
	if len(missing) == 0 {
		lines = append(lines, reportLine{"Summary", verdictPass, "All required tools available"})
	} else {
		lines = append(lines, reportLine{"Summary", verdictFail, fmt.Sprintf("%d required tool(s) missing", len(missing))})
	}

	for _, s := range statuses {
		lines = append(lines, toolLine(s))
	}

	if len(missing) > 0 {
		commands := make([]string, 0, len(missing))
		for _, m := range missing {
			commands = append(commands, m.Command)
		}
		lines = append(lines, reportLine{"Install", verdictWarn, strings.Join(commands, ", ")})
	}
	return lines
}

func toolLine(s deps.Status) reportLine {
	if s.Available {
		detail := fmt.Sprintf("Ready (%s)", s.Path)
		if s.Detail != "" {
			detail += "; " + s.Detail
		}
		return reportLine{s.Name, verdictPass, detail}
	}
	v := verdictFail
	if s.Optional {
		v = verdictWarn
	}
	detail := strings.TrimSpace(s.Detail)
	if detail == "" {
		detail = "not available"
	}
	return reportLine{s.Name, v, detail}
}

func checkLine(r preflight.Result) reportLine {
	if r.Passed {
		return reportLine{r.Name, verdictPass, r.Detail}
	}
	return reportLine{r.Name, verdictFail, r.Detail}
}

// trayLine warns rather than fails: a regular file or a drive without
// CDROM ioctls still has a mount table entry and lsblk metadata worth showing.
func trayLine(status disc.DriveStatus, err error) reportLine {
	switch {
	case err != nil:
		return reportLine{"Tray", verdictWarn, err.Error()}
	case status.Writable():
		return reportLine{"Tray", verdictPass, status.String()}
	}
	detail := status.String()
	if hint := status.Hint(); hint != "" {
		detail += "; " + hint
	}
	return reportLine{"Tray", verdictWarn, detail}
}

func mountLine(mountPoint string, mounted bool, err error) reportLine {
	switch {
	case err != nil:
		return reportLine{"Mounted", verdictWarn, err.Error()}
	case mounted:
		return reportLine{"Mounted", verdictNote, mountPoint}
	default:
		return reportLine{"Mounted", verdictNote, "no"}
	}
}

func mediaLine(info disc.DiscInfo, err error) reportLine {
	if err != nil {
		return reportLine{"Media", verdictWarn, err.Error()}
	}
	label, fsType := info.Label, info.FSType
	if label == "" {
		label = "(none)"
	}
	if fsType == "" {
		fsType = "blank or unreadable"
	}
	return reportLine{"Media", verdictNote, fmt.Sprintf("label %s, filesystem %s", label, fsType)}
}

func historyLine(stats history.Stats) reportLine {
	if stats.Total == 0 {
		return reportLine{"History", verdictNote, "no recorded runs"}
	}
	v := verdictPass
	if stats.Failed > 0 {
		v = verdictWarn
	}
	return reportLine{"History", v, fmt.Sprintf("%d passed, %d failed of %d runs", stats.Passed, stats.Failed, stats.Total)}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
