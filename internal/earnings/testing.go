package earnings

// SeedTotal is a test helper that seeds a worker's total when using the
// in-memory ledger.
func SeedTotal(l Ledger, workerID string, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.totals[workerID] = amount
	}
}
