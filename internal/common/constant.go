// Package common contains shared constants and sentinel errors used across
// SA Notes components.
package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed back on every API response.
const RequestIDHeaderName = "X-Request-Id"
