package main

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/spf13/cobra"

	"github.com/dicemill/outgunned/deploy"
)

func newBuildCommand() *cobra.Command {
	var (
		manifestPath string
		packageDir   string
		base         string
		runtime      string
		installer    []string
		tags         []string
		output       string
		push         bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the deployment unit image",
		Long:  "Builds an OCI image from the pinned base image, the dependency manifest, and the application package, with the module entrypoint baked in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (output != "" || push) && len(tags) == 0 {
				return fmt.Errorf("output or push requested but no tags are set")
			}
			for _, tag := range tags {
				if _, err := name.ParseReference(tag); err != nil {
					return fmt.Errorf("invalid tag %s : %w", tag, err)
				}
			}

			logger := newLogger()
			image, err := deploy.Build(cmd.Context(), deploy.BuildConfig{
				BaseImage:    base,
				Runtime:      runtime,
				ManifestPath: manifestPath,
				PackageDir:   packageDir,
				Installer:    deploy.NewInstaller(installer, logger),
				Logger:       logger,
			})
			if err != nil {
				return fmt.Errorf("building image : %w", err)
			}

			if output != "" {
				if err := deploy.SaveImage(image, output, tags); err != nil {
					return err
				}
			}
			if push {
				if err := deploy.PushImage(cmd.Context(), image, tags); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "requirements.txt", "dependency manifest path")
	cmd.Flags().StringVar(&packageDir, "package", "bot", "application package directory")
	cmd.Flags().StringVar(&base, "base", deploy.BaseScratch, "pinned base image reference, or scratch")
	cmd.Flags().StringVar(&runtime, "runtime", deploy.DefaultRuntime, "runtime interpreter for the entrypoint")
	cmd.Flags().StringSliceVar(&installer, "installer", []string{"pip", "install", "--no-deps"}, "installer command invoked per requirement")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tags to assign to the image, may be repeated")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tagged image to this tarball path")
	cmd.Flags().BoolVar(&push, "push", false, "push the tagged image to its registry")
	return cmd
}
