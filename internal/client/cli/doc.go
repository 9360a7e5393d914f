// Package cli provides the interactive coursekeeper authoring client.
//
// It wires configuration, the upload ledger, the REST backend client and the
// curriculum engine, then runs a REPL over the course outline. Sections and
// lessons are addressed by the 1-based positions printed by "list".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
