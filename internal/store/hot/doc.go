// Package pebblestore is the hot tier of §4.1: a Pebble instance private
// to one actor, holding its metadata document and the segments that have
// not been offloaded to the cold tier.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: filepath.Join(dataDir, actorID),
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	b.Set([]byte("metadata"), doc)
//	_ = db.Commit(b)
package pebblestore
