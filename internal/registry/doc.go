// Package registry provides the glue between node type manifests and the Go
// behaviors implementing them.
//
// Modules register themselves explicitly: the composition root hands every
// registry.Module to RegisterModules, each module registers its embedded HCL
// manifest and one constructor per node type. Validate then checks that the
// manifests and the Go code are in sync before any graph is built.
package registry
