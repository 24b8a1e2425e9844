/*
Package operation tracks the outcome and side effects of a single logical operation performed against a
managed-content store, and provides best-effort compensating rollback of those side effects.

# Core Components

Result:
  - Accumulates severity-tagged messages, named counters and named timers
  - Records the resources created or updated by the operation in an ordered list of transactions
  - Folds the messages of nested operations into its own via AddSubResult
  - Produces a read-only Snapshot for report rendering

Transaction:
  - Ledger of the resources created and updated during one change-set
  - Rollback destroys created resources and restores updated resources to their previous version
  - Rollback is best-effort: every failed compensation becomes a warning and the pass continues

OperationLogger:
  - Prefixes every log line with the operation id for out-of-band correlation

# Basic Usage

	res := operation.New("", "Import", lggr)
	res.MarkStart()

	res.AddCreatedAsset("doc-1", "Doc One")
	res.AddUpdatedAsset("doc-2", "Doc Two")

	if importFailed {
		res.RollbackCurrentTransaction(ctx, store, user, nil)
	}

	res.MarkEnd()
	fmt.Println(res.ExecutiveSummary())

A Result and its transactions are not safe for concurrent use. Create one Result per operation.
*/
package operation
