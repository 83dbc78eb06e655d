// Package reconcile projects raw polled snapshots into the rows a page shows.
//
// Server records are opaque JSON objects whose field names drift between
// endpoints and revisions ("asset" vs "asset_id", "user" vs "user_id"). The
// helpers here resolve a canonical field from an ordered alias list (Pick,
// String, Canonical, Decode), build id-to-name lookups with a placeholder for
// unknown ids (Lookup), and reduce a history to its current entry per foreign
// id (CurrentBy). Lookup and CurrentBy are pure and total: an unknown id
// yields a placeholder name, never a missing row.
package reconcile
