// Package channel accepts WebSocket connections from state-owning backends
// and feeds their pushed frames into a facet registry.
//
// The channel is intentionally one-directional for data: backends push,
// the engine ingests. The only traffic back to a backend is pong control
// frames. Writes to identifiers the consuming side never referenced are
// tolerated and counted, not errored: a backend may start pushing before
// the UI side has mounted the corresponding facet definitions.
package channel
