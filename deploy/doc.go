// Package deploy builds and runs the bot's deployment unit: a container
// image assembled from a pinned base image, an installed dependency set,
// and the application package, with a fixed module entrypoint. The package
// deliberately stops at process boundaries: it starts the entrypoint as a
// foreground child and reports its exit code, nothing more.
package deploy
