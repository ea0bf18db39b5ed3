// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client wrapper for the reactor API and a
// process-table guard that keeps a single reactor running per host.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
