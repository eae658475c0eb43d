package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"

	"github.com/pterm/pterm"
)

var (
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = pterm.FgLightGreen
)

// printErrorMessage prints a plain error to the console.
func printErrorMessage(err error) {
	errorStyleBG.Print("Error")
	errorColorFG.Println(" " + err.Error())
}

// printBuildSuccess prints the success banner and the manifest location.
func printBuildSuccess(manifest *depm.BuildManifest) {
	successStyleBG.Print("Done")
	fmt.Printf(" %d artifact(s) ready to link, output at ", len(manifest.BuildOutputPaths))
	infoColorFG.Println(manifest.OutputPath)
}

// displayDiagnostics prints every collected diagnostic.
func displayDiagnostics(diags []*report.Diagnostic) {
	for _, diag := range diags {
		displayDiagnostic(diag)
	}

	fmt.Println()
	errorColorFG.Printf("build failed with %d error(s)\n", len(diags))
}

// displayDiagnostic prints one diagnostic: a banner naming the error kind and
// file, the message, and the offending source line when the span is known.
func displayDiagnostic(diag *report.Diagnostic) {
	fmt.Print("\n-- ")
	errorStyleBG.Print(strings.Title(diag.Kind.String()))
	fmt.Print(" ")

	if diag.File != "" {
		infoColorFG.Print(diag.File)
		if diag.Span != nil {
			fmt.Printf(":%d:%d", diag.Span.StartLine+1, diag.Span.StartCol+1)
		}
	}

	fmt.Println()
	fmt.Println(diag.Message)

	if diag.File != "" && diag.Span != nil {
		displayCodeSelection(diag.File, diag.Span)
	}
}

// displayCodeSelection prints the first source line of the span with a
// highlight underneath it.  The file is reopened for display only; failures
// here are silently skipped since the diagnostic itself was already printed.
func displayCodeSelection(file string, span *report.TextSpan) {
	f, err := os.Open(file)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := ""
	for i := 0; sc.Scan(); i++ {
		if i == span.StartLine {
			line = sc.Text()
			break
		}
	}

	if line == "" {
		return
	}

	lineNumber := fmt.Sprintf("%d | ", span.StartLine+1)
	fmt.Println()
	fmt.Print(lineNumber, strings.ReplaceAll(line, "\t", "    "), "\n")

	// Tabs count as four columns, matching the lexer's position tracking.
	startCol := span.StartCol + strings.Count(line, "\t")*3
	endCol := startCol + 1
	if span.EndLine == span.StartLine {
		endCol = span.EndCol + strings.Count(line, "\t")*3
	}

	fmt.Print(strings.Repeat(" ", len(lineNumber)+startCol))
	errorColorFG.Println(strings.Repeat("^", endCol-startCol))
}
