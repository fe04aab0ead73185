package protocol

// Reassembler collects fragments for one virtual connection, keyed by
// sequence number, until every fragment id for that sequence has arrived.
//
// Incomplete sets are discarded when the owning connection goes idle (the
// caller drops the whole Reassembler with the connection) or when a newer
// sequence's fragment set completes first — per-sequence buffers with an
// idle-bound lifetime are the minimum correct policy spec.md §4.8/§9 calls
// for; this is the one place the distilled spec leaves as an open question.
type Reassembler struct {
	pending map[uint16]*fragmentSet
}

type fragmentSet struct {
	total    uint8
	delivery DeliveryMethod
	parts    map[uint8][]byte
}

// Add folds one fragment into the reassembler. It returns the reassembled
// payload and true once every fragment id in [0, total) has been seen for
// seq; otherwise it returns (nil, false).
func (r *Reassembler) Add(seq uint16, delivery DeliveryMethod, header FragmentHeader, payload []byte) ([]byte, bool) {
	if r.pending == nil {
		r.pending = make(map[uint16]*fragmentSet)
	}

	set, ok := r.pending[seq]
	if !ok {
		set = &fragmentSet{
			total:    header.NumFragments,
			delivery: delivery,
			parts:    make(map[uint8][]byte),
		}
		r.pending[seq] = set
	}
	if header.ID >= set.total {
		return nil, false
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)
	set.parts[header.ID] = stored

	if uint8(len(set.parts)) < set.total {
		return nil, false
	}

	assembled := make([]byte, 0)
	for i := uint8(0); i < set.total; i++ {
		assembled = append(assembled, set.parts[i]...)
	}
	delete(r.pending, seq)
	r.evictOlderThan(seq)
	return assembled, true
}

// evictOlderThan discards any still-incomplete fragment set strictly older
// than seq, since this connection only offers unordered delivery and an
// older partial set will never be needed once a newer one has completed.
func (r *Reassembler) evictOlderThan(seq uint16) {
	for pending := range r.pending {
		if IsNewer(pending, seq) {
			delete(r.pending, pending)
		}
	}
}
