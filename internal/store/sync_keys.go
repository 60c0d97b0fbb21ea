package store

import "fmt"

// Sync documents live under computed keys, never stored ones:
//
//	sync/{user}/{app}/current            latest payload
//	sync/{user}/{app}/meta               header for the latest payload
//	sync/{user}/{app}/history/{version}  archived payload snapshots
//
// The same layout is shared by every blob backend, so an operator reading a
// Redis keyspace or a blob directory sees the same structure.
func syncCurrentKey(userID, app string) string {
	return fmt.Sprintf("sync/%s/%s/current", userID, app)
}

func syncMetaKey(userID, app string) string {
	return fmt.Sprintf("sync/%s/%s/meta", userID, app)
}

func syncHistoryKey(userID, app string, version int64) string {
	return fmt.Sprintf("sync/%s/%s/history/%d", userID, app, version)
}
