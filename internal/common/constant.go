package common

// AuthorizationHeader carries the bearer access token on protected requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix must precede the access token in AuthorizationHeader.
const BearerPrefix = "Bearer "

// Platform tags accepted in access token claims.
const (
	PlatformWeb     = "web"
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// RefreshTokenLength is the number of alphanumeric characters in a refresh token.
const RefreshTokenLength = 64
