// Package codesweep provides the command-line interface for the codesweep
// tool. It configures subcommands (scan, scanners, baseline, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/codesweep/codesweep/cmd/codesweep"
//	func main() { codesweep.Execute() }
package codesweep
