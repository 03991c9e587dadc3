// Package journal provides event journal implementations.
//
// Implementations:
//   - memory: bounded in-memory slice, the default backend
//   - redis: capped Redis list that survives restarts
package journal
