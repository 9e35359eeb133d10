/*
Package session serializes access to stored session records.

A Manager guards every conversation key with a reference-counted local mutex and,
optionally, a distributed lock so that several replicas sharing one store never
interleave a load-modify-save cycle on the same key.
*/
package session
