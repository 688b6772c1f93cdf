// Package metrics holds the Prometheus collectors exported by mapdex.
package metrics

// Namespace prefixes every mapdex metric.
const Namespace = "mapdex"
