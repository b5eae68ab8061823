// Package core provides the roster grouping logic behind ShuffleRoster.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers and the roster CLI without
// modification.
//
// # Architecture
//
// The package is organized around a handful of pieces:
//
//   - Parser: [Parse] turns a CSV or spreadsheet file into a [Dataset].
//   - Grouping: [Grouper.Group] assigns every record a GROUP number.
//   - Renderer: [Render] projects a dataset into a display [Grid].
//   - Exporter: [ExportDataset] serializes a grouped dataset for download.
//   - Session: [Session] is the application state a user acts on; [Service]
//     keeps one per browser session.
//
// # Grouping
//
// Records are (optionally) shuffled and assigned GROUP = index/size + 1.
// When the last group ends up smaller than size/2+1 and it is not the only
// group, each of its members is moved to a random earlier group:
//
//	grouped, err := core.NewGrouper(nil).Group(ds, 4, true)
//	if errors.Is(err, core.ErrInvalidGroupSize) {
//	    // size was 0, negative or larger than the roster
//	}
//
// # Error Handling
//
// Failures are reported with sentinel errors ([ErrEmptyInput],
// [ErrUnsupportedExtension], [ErrInvalidGroupSize], [ErrNoDataToExport],
// [ErrFileRead], [ErrNoDataLoaded]). [MapError] turns any of them into a
// user-facing message with a support code, and [NotificationFor] into the
// short-lived feedback shown to the user.
package core
