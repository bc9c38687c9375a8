// Package common contains shared constants and sentinel errors used across
// holocron components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on HTTP requests
	// and, lower-cased, in gRPC metadata.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token inside the authorization header.
	BearerScheme = "Bearer"

	// DefaultPage and DefaultRows apply when a list request omits pagination.
	DefaultPage = 1
	DefaultRows = 10

	// MaxPage and MaxRows bound client-supplied pagination.
	MaxPage = 100000
	MaxRows = 100
)
