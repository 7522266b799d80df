/*
Package domain contains the core vocabulary shared by every stepwise package.

It defines the error taxonomy of the workflow engine and the lifecycle events emitted
while steps are saved and wizards are completed. This package is kept pure and free of
external dependencies, following Hexagonal Architecture principles.

# Error Taxonomy

  - ErrUnknownStep: a key is not registered in a wizard's registry. Always a caller bug
    or a stale link; it is never retried or swallowed.
  - ErrNotConfigured: a required collaborator (store, registry, session store) was not supplied.
  - ErrSessionNotFound: a session store has no record for the given id.

Validation failures are not errors: they are returned as data (see schema.Errors).
*/
package domain
