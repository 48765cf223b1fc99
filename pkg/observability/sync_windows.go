package observability

func isIgnorableSyncError(err error) bool {
	return true
}
