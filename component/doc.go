// Package component defines lifecycle-managed infrastructure pieces.
//
// A Component is started once, stopped once and can report its health.
// Registry starts components in registration order and stops them in
// reverse, which is how the session registry is wired into an application:
// Start configures every named session, Stop releases them.
package component
