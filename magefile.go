//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "lexicard"

var Default = Build

// Build compiles the lexicard binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/lexicard")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Integration runs the tests that call the OpenAI and Gemini APIs
func Integration() error {
	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("Neither OPENAI_API_KEY nor GEMINI_API_KEY set, integration tests will skip")
	}
	return sh.RunV("go", "test", "-count=1", "-run", "Integration", "./...")
}

// Lint runs go vet
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Install runs the tests and installs lexicard into $GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/lexicard")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binary)
}
