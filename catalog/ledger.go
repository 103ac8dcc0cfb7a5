package catalog

// ledgerCapacity bounds the recently-played ledger.
const ledgerCapacity = 50

type playRecord struct {
	id    string
	count int
}

// ledger is a bounded most-recent-first sequence of played entries.
// Replaying moves the record to the front and increments its count rather
// than inserting a duplicate.
type ledger struct {
	capacity int
	records  []playRecord
}

func newLedger(capacity int) *ledger {
	return &ledger{capacity: capacity}
}

func (l *ledger) touch(id string) {
	for i, r := range l.records {
		if r.id == id {
			r.count++
			copy(l.records[1:i+1], l.records[:i])
			l.records[0] = r
			return
		}
	}
	l.records = append([]playRecord{{id: id, count: 1}}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}
}

func (l *ledger) plays(id string) int {
	for _, r := range l.records {
		if r.id == id {
			return r.count
		}
	}
	return 0
}

// rank returns the recency position of id, 0 being most recent. Entries
// not in the ledger rank after every ledgered one.
func (l *ledger) rank(id string) int {
	for i, r := range l.records {
		if r.id == id {
			return i
		}
	}
	return len(l.records)
}
