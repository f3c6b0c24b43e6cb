package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/chatproxy/internal/dagger"
)

const modulePath = "github.com/papercomputeco/chatproxy"

// Build and return directory of chatproxy binaries
func (c *Chatproxy) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	gooses := []string{"linux", "darwin"}
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()
	golang := c.goContainer()

	for _, goos := range gooses {
		for _, goarch := range goarches {
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			build := golang.
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch).
				WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/chatproxy"})

			outputs = outputs.WithDirectory(path, build.Directory(path))
		}
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (c *Chatproxy) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X '%s/pkg/utils.Version=%s'", modulePath, version),
		fmt.Sprintf("-X '%s/pkg/utils.Sha=%s'", modulePath, commit),
		fmt.Sprintf("-X '%s/pkg/utils.Buildtime=%s'", modulePath, time.Now().UTC().Format(time.RFC3339)),
	}

	return c.Build(ctx, strings.Join(ldflags, " "))
}
