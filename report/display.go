package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	pterm.Error.Println("internal error: " + message)
	pterm.Println("this should never happen — please file an issue")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	pterm.Error.Println("fatal: " + message)
}

// displayConfigError displays an error encountered while loading workspace
// configuration (a malformed chaiworker.toml, an unreadable library path).
func displayConfigError(kind, msg string) {
	pterm.Warning.Printfln("%s: %s", kind, msg)
}

// displayCompileMessage displays a compilation error or warning.  The label is
// the string to prefix the message with: eg. if we want to display an error,
// the label is "error".
func displayCompileMessage(label, absPath, reprPath string, span *TextSpan, message string) {
	printer := pterm.Error
	if label == "warning" {
		printer = pterm.Warning
	}

	if span == nil {
		printer.Printfln("%s: %s", reprPath, message)
	} else {
		printer.Printfln("%s:%d:%d: %s", reprPath, span.StartLine+1, span.StartCol+1, message)
		displaySourceText(absPath, span)
	}
}

// displayStdError displays a standard Go error.
func displayStdError(reprPath string, err error) {
	pterm.Error.Printfln("%s: %s", reprPath, err)
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
// Failures to read the file back for reporting purposes are themselves
// reported (not fatal to the process: the worker keeps running even if one
// diagnostic can't be rendered with a source snippet).
func displaySourceText(absPath string, span *TextSpan) {
	file, err := os.Open(absPath)
	if err != nil {
		displayICE(fmt.Sprintf("failed to open file %s for reporting: %s", absPath, err))
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if err := sc.Err(); err != nil {
		displayICE(fmt.Sprintf("failed to read file %s for reporting: %s", absPath, err))
		return
	}

	if len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	// Calculate the maximum line number length.
	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))

	// Generate the format string for line numbers.
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	gutter := pterm.NewStyle(pterm.FgGray)
	carret := pterm.NewStyle(pterm.FgRed, pterm.Bold)

	for i, line := range lines {
		// Print the line number and separator bar.
		gutter.Printf(lineNumFmtStr, i+span.StartLine+1)

		// Print the source text with the leading indent trimmed off.
		fmt.Println(line[minIndent:])

		// Print the line and bar used for the line for carret underlining.
		gutter.Print(strings.Repeat(" ", maxLineNumLen) + " | ")

		// Calculate the number of spaces before carret underlining begins. For
		// any line which is not the starting line, this is always zero since
		// the underlining is always continuing from the previous line. For all
		// other lines, it is start column - the minimum indent.
		var carretPrefixCount int
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		} else {
			carretPrefixCount = 0
		}

		// Calculate the number of characters at the end of the source line that
		// should not be highlighted.  For all lines except the last line, this
		// is zero, since underlining should span until the end of the line and
		// over onto the next line.  For the last line, it is length of the line
		// - the end column of the errorenous source text.
		var carretSuffixCount int
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol
		} else {
			carretSuffixCount = 0
		}

		// Print the number of spaces that come before the carret (ie. skip
		// underlining until the start column).
		fmt.Print(strings.Repeat(" ", carretPrefixCount))

		// Print the underlining carrets for the given line.
		carret.Println(strings.Repeat("^", len(line)-carretSuffixCount-carretPrefixCount-minIndent))
	}

	fmt.Println()
}
