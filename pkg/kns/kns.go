// Package kns holds the Karlmeister node set. Each sub-package implements one
// node family as pure functions plus a Nodes constructor that declares the
// host-facing slots:
//
//   - [github.com/karlmeister/kns/pkg/kns/text]: TextConcatenator and StringSplit
//   - [github.com/karlmeister/kns/pkg/kns/sampler]: KSampler config selectors, tuple pack and unpack
//   - [github.com/karlmeister/kns/pkg/kns/choose]: A_IfNotNone presence-based selection
//   - [github.com/karlmeister/kns/pkg/kns/filename]: SeedFilenameGenerator
//   - [github.com/karlmeister/kns/pkg/kns/defaults]: the full catalogue with the standard middleware
package kns

// Category is the editor menu category every node is listed under.
const Category = "Karlmeister Nodes"
