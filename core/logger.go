package core

// Logger is any service that can log application events.
// args may hold errors, maps of extra data, or the request's Identity.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Identity is the authenticated caller, as issued by the auth backend.
type Identity struct {
	ID    string
	Email string
}
