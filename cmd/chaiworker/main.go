// Command chaiworker is a manual harness for the incremental-compilation
// worker: it loads a workspace, opens the one source file named on the
// command line, triggers a refresh, waits a fixed 200ms (it does not wait
// for the pass to finish), and prints whatever diagnostics were published
// by then.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ComedicChimera/olive"
	"github.com/pterm/pterm"

	"chaiworker/common"
	"chaiworker/content"
	"chaiworker/diag"
	"chaiworker/pipeline"
	"chaiworker/report"
	"chaiworker/wclock"
	"chaiworker/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli := olive.NewCLI("chaiworker", "chaiworker is a manual harness for the incremental-compilation worker", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the worker log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")
	cli.AddStringArg("lib", "L", "an additional library search path", false)
	cli.AddPrimaryArg("files", "the source file to open", true)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		pterm.Error.Println(err.Error())
		return 1
	}

	primary, _ := result.PrimaryArg()
	if primary == "" {
		pterm.Error.Println("no source files given")
		return 1
	}
	files := []string{primary}

	logLevel := logLevelFromName(result.Arguments["loglevel"].(string))

	var extraLibs []string
	if libVal, ok := result.Arguments["lib"]; ok {
		extraLibs = append(extraLibs, libVal.(string))
	}

	root := filepath.Dir(files[0])

	var publishMu sync.Mutex
	published := map[string]*diag.Bundle{}

	w := worker.New(worker.Config{
		Frontend:  pipeline.NullFrontend{},
		Root:      root,
		ExtraLibs: extraLibs,
		LogLevel:  logLevel,
		Publish: func(uri string, b *diag.Bundle) {
			publishMu.Lock()
			published[uri] = b
			publishMu.Unlock()
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	for i, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			pterm.Error.Printfln("resolving %s: %s", path, err.Error())
			return 1
		}
		bytes, err := os.ReadFile(abs)
		if err != nil {
			pterm.Error.Printfln("reading %s: %s", path, err.Error())
			return 1
		}

		uri := common.NormalizeURI("file://" + abs)
		w.UpdateFile(uri, wclock.Version(1), content.Rope(string(bytes)))

		if i == 0 {
			w.Refresh(uri)
		}
	}

	w.Refresh("")
	time.Sleep(200 * time.Millisecond)

	publishMu.Lock()
	defer publishMu.Unlock()

	if len(published) == 0 {
		pterm.Success.Println("no diagnostics")
		return 0
	}

	exitCode := 0
	for uri, bundle := range published {
		if bundle.HasErrors() {
			exitCode = 1
		}
		printBundle(uri, bundle)
	}
	return exitCode
}

func printBundle(uri string, bundle *diag.Bundle) {
	pterm.DefaultSection.Println(uri)
	for _, d := range bundle.All() {
		line := fmt.Sprintf("[%s/%s] %s", d.Stage, d.Severity, d.Message)
		if d.Severity == diag.SevError {
			pterm.Error.Println(line)
		} else {
			pterm.Warning.Println(line)
		}
	}
}

func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}
