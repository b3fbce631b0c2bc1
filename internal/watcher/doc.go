// Package watcher reports changes that can alter a repository's layer
// status: edits to ignore rules and files appearing or disappearing in the
// shallow part of the tree that layer scans.
//
// Events are debounced so an editor save or a git checkout produces one
// batch:
//
//	w, err := watcher.New(watcher.Targets{Root: root, GitDir: gitDir}, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go w.Start(ctx)
//
//	for batch := range w.Events() {
//	    if watcher.RulesChanged(batch) {
//	        // drop cached .gitignore sources
//	    }
//	    // redraw
//	}
package watcher
