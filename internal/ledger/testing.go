package ledger

// CountByType is a test helper that counts a user's entries of the given type
// when using the in-memory log.
func CountByType(l Log, userID int64, entryType EntryType) int {
	mem, ok := l.(*inMemoryLog)
	if !ok {
		return 0
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	count := 0
	for _, e := range mem.entries {
		if e.UserID == userID && e.Type == entryType {
			count++
		}
	}
	return count
}
