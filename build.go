//go:build ignore

// build.go - Product Pulse build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, pulsectl, test, package, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPackage = "productpulse/internal/app.Version"

var (
	distDir = "dist"

	// Executable names by source directory under cmd/
	executables = map[string]string{
		"web":      "productpulse",
		"pulsectl": "pulsectl",
	}

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	version := flag.String("version", "dev", "Version stamped into the web server")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	start := time.Now()
	switch *target {
	case "all":
		for name := range executables {
			buildExecutable(name, *version, *verbose)
		}
	case "web", "pulsectl":
		buildExecutable(*target, *version, *verbose)
	case "test":
		runTests(*verbose)
	case "package":
		buildExecutable("web", *version, *verbose)
		buildExecutable("pulsectl", *version, *verbose)
		copyWebAssets()
	case "clean":
		if err := os.RemoveAll(distDir); err != nil {
			printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
			os.Exit(1)
		}
	default:
		fmt.Println("Targets: all, web, pulsectl, test, package, clean")
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func buildExecutable(name, version string, verbose bool) {
	exeName := executables[name]
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s...", name))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := fmt.Sprintf("-s -w -X %s=%s", versionPackage, version)
	args := []string{"build", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	if err := run(verbose, "go", args...); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(info.Size())/1024/1024))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	if err := run(true, "go", append(args, "./...")...); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
}

// copyWebAssets places the pages next to the server binary, where the
// default web_dir resolves.
func copyWebAssets() {
	err := filepath.Walk("web", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(distDir, path)
		if info.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
	if err != nil {
		printError(fmt.Sprintf("Failed to copy web assets: %v", err))
		os.Exit(1)
	}
	printSuccess("Copied web assets")
}

func run(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if verbose {
		fmt.Printf("Running: %s %s\n", name, strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
