package common

// AuthorizationHeaderName carries the bearer access token on REST requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// Lesson types understood by both the client and the backend.
const (
	LessonTypeVideo = "VIDEO"
	LessonTypeFile  = "FILE"
)
