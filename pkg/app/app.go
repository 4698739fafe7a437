// Package app holds the runtime plumbing shared by the smilecoind
// entrypoints: the server command and the migration runner both start
// through the same Runner contract, and the subpackages supply the HTTP
// scaffolding and error taxonomy they build on.
package app

// Runner is a long-lived application component started by a cmd binary.
// Run blocks until the component finishes or fails.
type Runner interface {
	Run() error
}
