// Package cli provides the interactive CampusHub command-line client.
//
// It wires configuration, the identity provider (in-process or over gRPC),
// local storage, the session tracker and the onboarding wizard behind a
// small REPL. Typical flow: run the sign-up wizard, confirm the emailed
// code, fill in a profile, then log in and out as needed.
//
// Commands:
//   - signup / verify: the onboarding wizard
//   - login / logout
//   - profile, profile edit, avatar <file>
//   - status, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
