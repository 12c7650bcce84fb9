package event_bus

const (
	// QueryUpdated is published by the query cache whenever the visible state
	// of a key changes (fetch started, value accepted).
	QueryUpdated EventType = "query.updated"
)
