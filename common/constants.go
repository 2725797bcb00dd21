// Package common holds small cross-cutting constants shared by every
// package in the worker, mirroring the teacher's compiler-wide globals.
package common

// WorkerVersion is the current worker version string.
const WorkerVersion string = "0.1.0"

// WorkspaceFileName is the name of the optional workspace configuration
// file (see package config) consulted for extra library paths.
const WorkspaceFileName string = "chaiworker.toml"

// SrcFileExt is the file extension recognized as source for this language.
const SrcFileExt string = ".chai"

// CacheDirName is the name of the on-disk directory reserved for future
// compilation caching. The core itself persists nothing (spec.md §6), and
// no package in this module reads this constant.
const CacheDirName string = ".chaiworker"
