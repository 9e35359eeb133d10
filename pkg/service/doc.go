// Package service runs the engine's session operations against stored records.
//
// Every call names a conversation key. The service loads the record under that key,
// applies one engine operation, and saves the result, all while holding the key's
// lock in the session manager. HTTP, MCP and the CLI session commands are thin
// layers over this package.
package service
