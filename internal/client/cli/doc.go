// Package cli provides the interactive postbox command-line client.
//
// App wires the configuration and a gRPC client into a small REPL. The
// session (access and refresh tokens) lives only in memory and ends when
// the process exits or the user logs out.
//
// Commands:
//   - register, login, logout
//   - list, unread, send, read <id>, delete <id>
//   - help, exit
package cli
