package audit

// WithUserID sets the subject user.
func WithUserID(id string) EventOption {
	return func(e *Event) {
		e.UserID = id
	}
}

// WithSessionID sets the session the event belongs to.
func WithSessionID(id string) EventOption {
	return func(e *Event) {
		e.SessionID = id
	}
}

// WithResource sets the resource type and ID
func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

// WithMetadata adds metadata to the event
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// WithResult sets the event result
func WithResult(result Result) EventOption {
	return func(e *Event) {
		e.Result = result
	}
}

// WithSeverity overrides the severity derived from the result.
func WithSeverity(s Severity) EventOption {
	return func(e *Event) {
		e.Severity = s
	}
}
