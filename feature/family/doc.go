// Package family is the record store for family members and the reign
// reference list.
//
// Every mutation (Create, Update, Delete, ReplaceAll, SetAssociations)
// commits locally first and then hands the full dataset to a Syncer. A
// failing sync is logged and never rolls back or fails the mutation.
//
// Store also implements reconcile.Source and reconcile.BatchWriter, so a
// reconciliation apply updates every stale association in one transaction
// and triggers a single bulk sync.
//
// # Usage
//
//	store := family.NewStore(db, orchestrator, logger)
//	if err := store.Prepare(ctx); err != nil {
//	    return err
//	}
//	records, err := store.Create(ctx, dataset.Record{ExternalID: "1.2", Born: dataset.Year(1570)})
package family
