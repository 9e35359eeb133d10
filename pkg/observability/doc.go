/*
Package observability provides monitoring for the quest engine.

It turns engine lifecycle hooks into Prometheus counters and structured log lines,
and exposes the collected metrics over HTTP.
*/
package observability
