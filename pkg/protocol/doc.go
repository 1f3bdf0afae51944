// Package protocol defines the wire format between a state-owning backend
// and the facet engine.
//
// The backend pushes JSON frames over the ingestion channel. Each frame
// carries one or more facet writes, or a ping/pong control message:
//
//	{"type":"write","seq":12,"writes":[{"id":"data.user","value":{"username":"Sam"}}]}
//	{"type":"batch","seq":13,"writes":[{"id":"data.hp","value":10},{"id":"data.mana","value":4}]}
//	{"type":"ping","seq":14}
//
// Identifiers are flat strings agreed out-of-band, by convention
// dot-separated hierarchical names. Values are arbitrary JSON; the engine
// stores them as decoded dynamic values, and change detection is driven by
// version counters, never by value identity.
//
// Decoding enforces size and batch limits so one misbehaving backend cannot
// balloon memory; violations surface as sentinel errors.
package protocol
