// Package storage provides the entity store implementation.
//
// Implementations:
//   - memory: mutex-guarded maps holding the live enrollment state
//
// There is deliberately no persistent implementation: enrollment state has
// no serialization format and lives only for the process.
package storage
