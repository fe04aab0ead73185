package protocol

// ExternalAcks tracks the peer's traffic: the last sequence number seen from
// them, and a 32-bit bitfield recording which of the 32 sequences before it
// have also been seen. Bit n (0-indexed) is set iff sequence
// last_seen-(n+1) has been received.
type ExternalAcks struct {
	lastSequenceNum uint16
	ackField        uint32
}

// Ack folds a newly-seen peer sequence number into the record.
func (e *ExternalAcks) Ack(seq uint16) {
	posDiff := seq - e.lastSequenceNum
	negDiff := e.lastSequenceNum - seq

	if posDiff == 0 {
		return
	}

	if posDiff < 1<<15 {
		if posDiff <= AckWindowSize {
			e.ackField = ((e.ackField << 1) | 1) << (posDiff - 1)
		} else {
			e.ackField = 0
		}
		e.lastSequenceNum = seq
	} else if negDiff <= AckWindowSize {
		e.ackField |= 1 << (negDiff - 1)
	}
	// else: too old, ignored.
}

// LastAcked returns the newest sequence number seen from the peer.
func (e *ExternalAcks) LastAcked() uint16 {
	return e.lastSequenceNum
}

// AckField returns the 32-bit window of prior acknowledgements.
func (e *ExternalAcks) AckField() uint32 {
	return e.ackField
}
