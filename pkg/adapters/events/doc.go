// Package events provides event bus implementations.
//
// Implementations:
//   - memory: in-process fan-out, the default backend
//   - redis: Redis Streams with consumer groups
package events
