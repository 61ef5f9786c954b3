// Package services holds the error taxonomy and context plumbing shared by
// the compositor pipeline stages.
//
// Errors are tagged with sentinel markers so callers can classify a failure
// (external tool, validation, configuration) without parsing messages. A
// fatal error from any stage identifies the asset key it concerns.
package services
