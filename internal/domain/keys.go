package domain

// DefaultKeyPrefix namespaces every key mapdex writes to the store.
const DefaultKeyPrefix = "mapdex:"
