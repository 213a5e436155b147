// Package interfaces groups the outer surfaces exposing the escrow.
package interfaces

// Service is a surface serving the escrow to its users. Start must not block,
// Stop waits for the in-flight requests to complete.
type Service interface {
	Start() error
	Stop()
}
