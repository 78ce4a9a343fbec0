// Package intrusive provides the two linked-list disciplines the rest of
// this module is built on: a non-thread-safe doubly-linked list for
// single-thread-owned membership (local-all, local-ready, the reactor's
// live-source set), and a multi-producer single-consumer queue for
// cross-thread handoff (foreign wakeups, reactor registration changes).
//
// Both are intrusive: the link lives embedded in the owning struct rather
// than in a separately allocated node. Go has no container_of, so instead
// of locating the owner via member-offset arithmetic, each link carries an
// explicit typed back-pointer to its owner, set once at construction.
package intrusive
