package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/go-containerregistry/pkg/crane"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
)

// Image layout constants. The runtime resolves the application module from
// the working directory, so dependencies and code share the same root.
const (
	// BaseScratch selects an empty base image.
	BaseScratch = "scratch"

	// DefaultRuntime is the interpreter baked into the entrypoint.
	DefaultRuntime = "python3"

	appDir     = "app"
	appPackage = "app/bot"
	workingDir = "/app"
)

// EntrypointModule is the module the image starts; the entrypoint is always
// `<runtime> -m bot.bot` with no further arguments.
const EntrypointModule = "bot.bot"

// BuildConfig describes one deployment unit build.
type BuildConfig struct {
	// BaseImage is a pinned image reference, or BaseScratch for an empty base.
	BaseImage string

	// Runtime is the interpreter for the entrypoint. Defaults to DefaultRuntime.
	Runtime string

	// ManifestPath points at the dependency manifest.
	ManifestPath string

	// PackageDir is the application package directory copied to /app/bot.
	PackageDir string

	Installer *Installer
	Logger    *slog.Logger
}

// Entrypoint returns the image entrypoint for the configured runtime.
func (config BuildConfig) Entrypoint() []string {
	runtime := config.Runtime
	if runtime == "" {
		runtime = DefaultRuntime
	}
	return []string{runtime, "-m", EntrypointModule}
}

// Build assembles the deployment unit image: parse the manifest, install
// every requirement into a staging directory, layer the staged dependencies
// and the application package over the base image, and set the entrypoint.
// Order is strict; the first failure aborts the build and the staging
// directory is discarded, so no partial environment ever reaches an image.
func Build(ctx context.Context, config BuildConfig) (v1.Image, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manifest, err := ParseManifestFile(config.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest : %w", err)
	}

	staging, err := stageDependencies(ctx, config.Installer, manifest.Requirements)
	if err != nil {
		return nil, err
	}

	base, err := baseImage(ctx, config.BaseImage)
	if err != nil {
		return nil, err
	}

	logger.Info("assembling image",
		"base", config.BaseImage,
		"requirements", len(manifest.Requirements),
		"package", config.PackageDir)

	appFiles, err := FileMapFromDir(config.PackageDir, appPackage)
	if err != nil {
		return nil, fmt.Errorf("assembling application package : %w", err)
	}

	image, err := appendFileMapLayer(base, staging)
	if err != nil {
		return nil, fmt.Errorf("layering dependencies : %w", err)
	}
	image, err = appendFileMapLayer(image, appFiles)
	if err != nil {
		return nil, fmt.Errorf("layering application package : %w", err)
	}

	image, err = mutate.Config(image, v1.Config{
		Entrypoint: config.Entrypoint(),
		WorkingDir: workingDir,
	})
	if err != nil {
		return nil, fmt.Errorf("setting image config : %w", err)
	}

	image, err = mutate.Canonical(image)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing image : %w", err)
	}

	return image, nil
}

// SaveImage writes the image to a tarball under the given tags.
func SaveImage(image v1.Image, path string, tags []string) error {
	tagged := map[string]v1.Image{}
	for _, tag := range tags {
		tagged[tag] = image
	}
	if err := crane.MultiSave(tagged, path); err != nil {
		return fmt.Errorf("saving image to %s : %w", path, err)
	}
	return nil
}

// PushImage pushes the image to every given reference.
func PushImage(ctx context.Context, image v1.Image, references []string, options ...crane.Option) error {
	options = append(options, crane.WithContext(ctx))
	for _, reference := range references {
		if err := crane.Push(image, reference, options...); err != nil {
			return fmt.Errorf("pushing %s : %w", reference, err)
		}
	}
	return nil
}

// stageDependencies installs the requirements into a throwaway staging
// directory and captures the result as image files. The staging directory
// is always removed, so a failed install leaves nothing behind.
func stageDependencies(ctx context.Context, installer *Installer, requirements []Requirement) (FileMap, error) {
	if len(requirements) == 0 {
		return FileMap{}, nil
	}
	if installer == nil {
		return nil, fmt.Errorf("manifest has requirements but no installer is configured")
	}

	staging, err := os.MkdirTemp("", "outgunned-build-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory : %w", err)
	}
	defer os.RemoveAll(staging)

	if err := installer.Install(ctx, requirements, staging); err != nil {
		return nil, fmt.Errorf("installing dependencies : %w", err)
	}

	return FileMapFromDir(staging, appDir)
}

func baseImage(ctx context.Context, reference string) (v1.Image, error) {
	if reference == "" || reference == BaseScratch {
		return empty.Image, nil
	}
	image, err := crane.Pull(reference, crane.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("pulling base image %s : %w", reference, err)
	}
	return image, nil
}

func appendFileMapLayer(image v1.Image, fileMap FileMap) (v1.Image, error) {
	tarData, err := ToTar(fileMap)
	if err != nil {
		return nil, err
	}

	opener := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(tarData)), nil
	}
	layer, err := tarball.LayerFromOpener(opener, tarball.WithCompressedCaching)
	if err != nil {
		return nil, fmt.Errorf("creating layer : %w", err)
	}

	appended, err := mutate.AppendLayers(image, layer)
	if err != nil {
		return nil, fmt.Errorf("appending layer : %w", err)
	}
	return appended, nil
}
