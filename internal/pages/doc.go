// Package pages holds the console's screens. Each page owns the polling
// subscriptions it displays, keeps its rows between mounts, and routes
// create/update/delete through a mutation coordinator.
//
// Pages never touch the terminal: the ui package renders the View a page
// returns and calls back into it for forms and deletions.
//
// # Page kinds
//
//   - Resource[T]: a CRUD table over one collection, built from a
//     Definition (columns, cell renderer, stats, reference collections)
//   - overview: read-only pages aggregating several collections, used for
//     the dashboard and the statistics page
//
// All returns them in navigation order: dashboard, the eleven resources,
// statistics.
//
// # Subscriptions
//
// A page declares feeds when it is built and starts them in Mount:
//
//	Mount ──> feeds.start ──> one poll.Poller per feed
//	                             │
//	   poller OnChange ──> feeds.deliver ──> onData (rows or Refs)
//	                             └──────────> Env.Changed (UI redraw)
//
// The primary feed polls at Intervals.Poll; reference collections used for
// names (categories, users, buyers...) poll at Intervals.Lookup; report
// endpoints poll at Intervals.Stats. Feeds outlive their pollers, so a
// remounted page shows its last snapshot until the new poller reports.
//
// Most endpoints return a list, which fetchRecords flattens with
// reconcile.NormalizeList. Report endpoints that answer with one object
// (the sales report) use fetchObject, which wraps the object as a single
// record.
//
// # Rows and optimistic edits
//
// A Resource keeps its rows in a mutate.Collection. Each fresh snapshot is
// applied wholesale with the time its request was issued, so edits that
// settled after that time are replayed on top. The maintenance page is also
// seeded from the legacy local cache on first mount; cached rows whose id
// was minted locally are marked ReadOnly and refuse Form, Submit, Delete and
// bulk deletion with ErrLocalOnly.
//
// # Views
//
// View is a value: title, stat cards, columns and rows, breakdown sections,
// loading and error state. Loading stays true until the primary feed's first
// response of any outcome. Filter narrows the rows by a case-insensitive
// substring over every cell.
package pages
