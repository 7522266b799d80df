/*
Package step models one page of a wizard.

A Definition is the static, per-wizard description of a step: its key, its title, the
typed attributes it owns and the rules over them. A Step is the ephemeral instance built
from a Definition on every access: it reads its attributes from the shared Store, accepts
one round of assignments, validates, and writes back on a successful Save.

Attributes a step does not declare are never read from the Store and never written to it.
*/
package step
