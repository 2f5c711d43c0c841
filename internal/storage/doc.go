// Package storage manages the on-disk cache of combination images.
//
// Every operation resolves its path through model.Resolve, so the layout is
//
//	<root>/<first emoji>/<first>_<second>_<size>.png
//
// File existence is the only record of what has been downloaded; there is no
// index. The Manager does no locking of its own: callers must not save the same
// pair concurrently.
//
// # Basic Usage
//
//	store, err := storage.New("/downloads", model.FormatAuto, logger)
//	if err != nil {
//	    // root is missing or unwritable
//	}
//
//	if !store.Exists(pair, 512) {
//	    path, err := store.Save(ctx, pair, 512, data)
//	}
package storage
