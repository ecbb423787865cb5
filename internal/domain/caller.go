package domain

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID    string
	Anonymous bool
}

// AnonymousCaller returns the caller used when authentication is switched off.
func AnonymousCaller() *Caller {
	return &Caller{Anonymous: true}
}
