//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "casecells"

// Default target - build the binary
var Default = Build

// Build builds the casecells binary into bin/
func Build() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", filepath.Join("bin", binary), "./cmd/casecells")
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs gofmt and go vet
func Lint() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return sh.RunV("go", "vet", "./...")
}

// QA runs lint and tests
func QA() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm("bin")
}
