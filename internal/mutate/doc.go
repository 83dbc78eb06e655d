// Package mutate performs create, update and delete requests for a page and
// merges their results into the page's rows immediately.
//
// A Coordinator owns the request side: it reports failures through a
// Notifier, returns the wrapped *api.HTTPError so a form can show field
// errors, and requires a confirm.Ticket for every delete. A Collection owns
// the rows and reconciles optimistic edits with polled snapshots.
package mutate
