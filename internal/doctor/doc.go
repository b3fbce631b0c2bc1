// Package doctor checks every managed exclude entry against the disk, the
// git index and the root .gitignore.
//
// Each entry gets one diagnosis:
//   - layered: the target exists and nothing it covers is tracked
//   - exposed: it covers files git still tracks
//   - stale: it matches nothing
//   - redundant: the root .gitignore already lists it
//
// Use the Checker with a loaded workspace:
//
//	rep, err := doctor.New(ws).Run(ctx)
//	doctor.NewPrinter(os.Stdout, noColor).Print(rep)
//	os.Exit(rep.ExitCode())
package doctor
