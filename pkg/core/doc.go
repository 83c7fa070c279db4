// Package core defines the shared language of the inliner.
//
// This package contains:
//   - Domain entities (Module, Registry)
//   - The error taxonomy shared by the indexer, orderer and resolver
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
