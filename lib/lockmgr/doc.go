// Package lockmgr implements locks on top of any batch.IExecutor, e.g. a
// store.Session or the rpc client.
//
// The lock manager keeps no state of its own. It is safe to create it multiple
// times on the same executor, or even a new one per call.
//
// Implementation:
//
//	- Acquire: one atomic batch [SET key owner NX PX ttl, GET key]. SET NX only
//	  succeeds if the key is unset, the GET reports which owner holds the lock
//	  after the batch. The owner ID is a random UUID.
//
//	- Release: one atomic batch [DELIFEQ key owner, EXISTS key]. The key is
//	  only deleted if it still holds our owner ID. A lock that no longer
//	  exists (e.g. expired) counts as released.
//
//	- Timeouts: a ttl > 0 lets the lock expire, so a crashed owner cannot
//	  block a resource forever.
//
// When used with a dstore backed executor every lock operation is a single
// RAFT log entry and therefore linearizable across the cluster.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager(store.NewSession(s))
//
//	acquired, ownerID, err := locks.AcquireLock(ctx, "resource:123", 30*time.Second)
//	if err != nil {
//	    // Handle error
//	}
//
//	if acquired {
//	    // Use the resource safely
//	    released, err := locks.ReleaseLock(ctx, "resource:123", ownerID)
//	}
//
// Security Considerations:
//
//	Owner IDs protect against accidental lock stealing, not against a client
//	that manipulates the lock keys directly.
package lockmgr
