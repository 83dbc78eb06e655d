// Package logtail reads the newest records of the console's own log file for
// the in-app log overlay.
//
// # Overview
//
// The console writes slog JSON records to a file rotated by lumberjack,
// because the terminal itself belongs to the UI. When the operator presses
// "o" the UI asks this package for the last few hundred records and shows
// them oldest first. Reading is a one-shot snapshot: the overlay does not
// follow the file while it is open.
//
// # Core Functionality
//
// The package provides two functions:
//
//  1. Read: the last N records of a file, parsed
//  2. Parse: one line decoded into an Entry
//
// Example usage:
//
//	entries, err := logtail.Read(cfg.LogFile, 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range entries {
//		fmt.Println(e)
//	}
//
// # Reading Log Files
//
// Read scans the file once with a ring buffer of maxLines lines:
//
//	1. Allocate a ring of maxLines slots
//	2. For each line in the file:
//	   - store it at the current index
//	   - advance the index, wrapping at maxLines
//	   - count lines up to maxLines
//	3. Fewer lines than slots: return the first count slots
//	4. Otherwise: return the ring starting at the current index
//
// Memory stays O(maxLines) however large the file grows between rotations,
// and lines come back in file order. maxLines <= 0 reads the whole file.
// Lines up to 1 MiB are accepted; a longer line is reported as a read error
// rather than silently truncated.
//
// A missing file yields no entries and no error: the console may not have
// logged yet, or logging may have just rotated. Blank lines are skipped.
//
// # Parsing
//
// Each line is decoded as a JSON object. The well-known slog keys become
// fields:
//
//   - time: parsed as RFC 3339, left zero when absent or malformed
//   - level: DEBUG, INFO, WARN or ERROR as slog writes them
//   - msg: the message
//   - component: the subsystem that logged (app, poll, mutate, ui, ...)
//
// Every other attribute is rendered as key=value, sorted by key so the
// same record always prints the same way. Lines that are not JSON objects,
// such as a panic trace appended by the runtime, are kept verbatim as the
// message so nothing is hidden from the operator.
//
// # Rendering
//
// Entry.String renders one line:
//
//	15:04:05 WARN  [poll] poll failed error=timeout url=/api/assets/
//
// The time is shown in local time. Colour is applied by the UI from the
// level, not by this package.
//
// # Error Handling
//
//   - Missing file: no entries, nil error
//   - Unreadable file: "open log: ..." wrapping the os error
//   - Scanner failure (line too long, I/O error): "read log: ..."
//
// Parse never fails.
//
// # Testing
//
// Tests write fixture files under t.TempDir and check ordering across the
// ring boundary, attribute sorting and the non-JSON fallback.
package logtail
