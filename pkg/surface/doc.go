// Package surface connects rendered preference controls to a host document.
//
// A Document answers selector queries and reports structural mutations. The
// Binder resolves a Locator against it and, when the target does not exist
// yet, waits for it with a single mutation watcher that disconnects after
// the first successful mount.
//
// MemoryDocument and MemoryElement implement the contracts in memory for
// tests and headless tooling.
package surface
