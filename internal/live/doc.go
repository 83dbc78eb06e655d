// Package live holds the process-wide signals that gate polling.
//
// Three independent components feed the gate:
//
//   - Flag: the user's Live on/off switch, persisted through a Store
//     (prefs.File in production) on every change.
//   - Navigation: the Navigation Window, open for a fixed duration after a
//     route (page) change and restarted by further changes.
//   - Visibility: terminal focus, the console's stand-in for tab visibility.
//
// Signals combines them behind read methods and a resume notification that
// pollers use to re-arm after a pause. Timers run on a juju/clock Clock so
// tests can drive them with testclock.
package live
