//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/sparks"

var Default = Build

// Test runs the unit tests
func Test() error {
	args := []string{"test", "./..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	return sh.RunV("go", args...)
}

// Build compiles the command line renderer into bin/
func Build() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", binary, ".")
}

// Render builds the binary and renders a scene; SCENE selects it (default cornell)
// and CONFIG names an optional TOML config file
func Render() error {
	mg.Deps(Build)

	args := []string{"-v"}
	if cfg := os.Getenv("CONFIG"); cfg != "" {
		args = append(args, "--config", cfg)
	}
	args = append(args, "render")
	if scene := os.Getenv("SCENE"); scene != "" {
		args = append(args, "--scene", scene)
	}
	fmt.Printf("Rendering with %s %v\n", binary, args)
	return sh.RunV(binary, args...)
}

// Serve builds the binary and starts the web server on PORT (default 8080)
func Serve() error {
	mg.Deps(Build)

	args := []string{"-v", "serve"}
	if port := os.Getenv("PORT"); port != "" {
		args = append(args, "--port", port)
	}
	return sh.RunV(binary, args...)
}

// Clean removes build and render outputs
func Clean() error {
	for _, dir := range []string{"bin", "output"} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
