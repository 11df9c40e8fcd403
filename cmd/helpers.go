package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ANSI colours for terminal output
var (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

var titleCaser = cases.Title(language.English)

// disableColors blanks every colour code, for output.colors=false or piped output
func disableColors() {
	for _, c := range []*string{
		&ColorReset, &ColorBold, &ColorRed, &ColorGreen, &ColorYellow,
		&ColorBlue, &ColorPurple, &ColorCyan, &ColorWhite,
	} {
		*c = ""
	}
}

func applyColorSetting() {
	if !viper.GetBool("output.colors") {
		disableColors()
	}
}

// PerformanceTimer records named event durations of a command
type PerformanceTimer struct {
	mu     sync.Mutex
	start  time.Time
	starts map[string]time.Time
	events map[string]time.Duration
	order  []string
}

func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{
		start:  time.Now(),
		starts: make(map[string]time.Time),
		events: make(map[string]time.Duration),
	}
}

func (t *PerformanceTimer) StartEvent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.starts[name] = time.Now()
}

// EndEvent stops name; ending an event that never started is a no-op
func (t *PerformanceTimer) EndEvent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	started, ok := t.starts[name]
	if !ok {
		return
	}
	delete(t.starts, name)

	if _, seen := t.events[name]; !seen {
		t.order = append(t.order, name)
	}
	t.events[name] += time.Since(started)
}

func (t *PerformanceTimer) GetDuration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events[name]
}

func (t *PerformanceTimer) GetTotalDuration() time.Duration {
	return time.Since(t.start)
}

// Events returns the recorded event names in the order they first ended
func (t *PerformanceTimer) Events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

func printHeader(title, subject string) {
	fmt.Printf("%s%s%s%s: %s%s%s\n", ColorBold, ColorBlue, title, ColorReset, ColorCyan, subject, ColorReset)
	fmt.Printf("%s%s%s\n\n", ColorBlue, strings.Repeat("═", 80), ColorReset)
}

func printSectionHeader(title string) {
	fmt.Printf("\n%s%s%s%s\n", ColorBold, ColorBlue, title, ColorReset)
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func printSuccess(format string, args ...any) {
	fmt.Printf("   %s✓%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Printf("   %s⚠%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("   %s•%s %s\n", ColorCyan, ColorReset, fmt.Sprintf(format, args...))
}

func printResult(name string, success bool) {
	if success {
		fmt.Printf("%-20s %s✓ PASS%s\n", name+":", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%-20s %s✗ FAIL%s\n", name+":", ColorRed, ColorReset)
	}
}

// displayPerformanceSummary prints every timed event with a title-cased name
func displayPerformanceSummary(timer *PerformanceTimer) {
	printInfo("Performance Breakdown:")
	for _, event := range timer.Events() {
		fmt.Printf("      %s: %v\n", eventTitle(event), timer.GetDuration(event))
	}
	fmt.Printf("\n%sTotal Duration: %v%s\n", ColorBold, timer.GetTotalDuration(), ColorReset)
}

func eventTitle(event string) string {
	return titleCaser.String(strings.ReplaceAll(event, "_", " "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func getConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	homeDir, _ := os.UserHomeDir()
	return fmt.Sprintf("%s/.config/phase-pitch/phase-pitch.yaml (not found, defaults in use)", homeDir)
}
