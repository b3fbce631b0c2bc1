// Package logging writes layer's structured logs to a size-rotated file
// under ~/.layer/logs/.
//
// Commands log at debug level; nothing reaches the terminal unless --debug
// mirrors the log to stderr. The MCP server never writes to stdout or
// stderr, which carry its JSON-RPC stream.
package logging
