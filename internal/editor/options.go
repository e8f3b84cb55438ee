package editor

import "github.com/okian/spinner/pkg/logger"

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets a custom logger for the editor.
func WithLogger(l logger.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDraftName sets the name given to new drafts.
func WithDraftName(name string) Option {
	return func(e *Editor) {
		if name != "" {
			e.draftName = name
		}
	}
}
