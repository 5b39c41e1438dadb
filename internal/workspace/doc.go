// Package workspace prepares the per-run working directory: it creates the
// directory, stages the sample dataset into it, and builds the checksum
// manifest the burned disc is later verified against.
//
// Manifests are written in md5sum/sha256sum text format ("<hex>  <path>") so
// an operator can re-check a workspace by hand with the coreutils tools.
package workspace
