package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (screen description, warnings)
	LevelVerbose = 2 // Verbose (fit details, bounds, per-stage values)
	LevelTrace   = 3 // Trace (per-sample projections)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-3).
// 0 = no output
// 1 = important info (screen description, tolerance warnings)
// 2 = verbose (plane fit, bounds, FOV derivation)
// 3 = trace (per-sample directions and projections)
// Output goes to stderr so the JSON result can go to stdout.
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stderr, "[anglemesh] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// SetOutput redirects diagnostic output, e.g. to an io.MultiWriter that
// also appends to a log file. No-op when debug is off.
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Screen prints the derived screen description (level 1).
func Screen(hFOV, vFOV, overlap, xCOP, yCOP float64) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] Screen: hFOV=%.4f vFOV=%.4f overlap=%.2f%% COP=(%.6f, %.6f)",
			hFOV, vFOV, overlap, xCOP, yCOP)
	}
}

// Warn prints a non-fatal warning (level 1).
func Warn(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[WARN] "+format, args...)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Verbose): everything ---

// Verbose prints a level 2 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 2).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 2).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 2).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// Plane prints plane-equation coefficients (level 2).
func Plane(a, b, c, d float64) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Screen plane: %.6f*x + %.6f*y + %.6f*z + %.6f = 0", a, b, c, d)
	}
}

// --- Level 3 functions (Trace): very low level ---

// Trace prints a level 3 message (per-sample detail).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// Sample prints one calibration sample's projected position (level 3).
func Sample(i int, x, y, z float64) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] sample %d -> (%.6f, %.6f, %.6f)", i, x, y, z)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt is a helper function that returns a formatted string
// only if debug is enabled (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
