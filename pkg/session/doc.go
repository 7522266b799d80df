/*
Package session serializes access to per-session wizard data.

A wizard Store is a façade over a mapping the caller owns. When that mapping lives
in a SessionStore (memory, file, redis), two requests for the same session must not
interleave their load-modify-save cycles. Manager provides that guarantee in-process
with reference-counted mutexes, and across replicas with an optional DistributedLocker.
*/
package session
