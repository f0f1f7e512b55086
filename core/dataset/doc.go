// Package dataset defines the family-tree records shared by the replication,
// backup, and reconciliation engines.
//
// A Record is one family member keyed by its hierarchical external id
// ("1.2.3"). An Interval is a reign from the reference list of monarchs. The
// Monarchs field on a Record holds the derived association: the ids of the
// reigns overlapping the person's lifetime. It is recomputed by
// core/reconcile and never edited by hand.
//
// Snapshots are serialized as an indented JSON array via Encode and Decode.
// Year fields decode leniently (numbers, numeric strings, or ISO dates).
package dataset
