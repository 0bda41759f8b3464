// Package preflight provides readiness checks for the paths and tools a
// backup depends on.
//
// These checks run in two contexts:
//   - The orchestrator calls CheckFreeSpace before copying so a likely
//     shortfall is reported up front. A failed check only warns; the copy
//     still runs.
//   - The CLI "kobo-backup status" command calls RunAll, CheckSystemDeps and
//     ProbeDevice to display readiness.
package preflight
