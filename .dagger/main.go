// chatproxy CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/chatproxy/internal/dagger"
)

// Chatproxy is the main module for the chatproxy CI/CD pipeline
type Chatproxy struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Chatproxy CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Chatproxy {
	return &Chatproxy{
		Source: source,
	}
}

// goContainer returns a Go container with module and build caches and the
// project source mounted. chatproxy has no cgo dependencies.
func (c *Chatproxy) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", c.Source)
}

// Test runs the chatproxy unit tests via "go test"
//
// +check
func (c *Chatproxy) Test(ctx context.Context) (string, error) {
	return c.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// Vet runs "go vet" over every package.
//
// +check
func (c *Chatproxy) Vet(ctx context.Context) (string, error) {
	return c.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
