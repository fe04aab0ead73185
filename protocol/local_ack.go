package protocol

// LocalAckRecord retains payloads for outgoing reliable sequences awaiting
// acknowledgement from the peer, so that a sequence found missing from the
// peer's ack window can be surfaced to the caller as dropped.
type LocalAckRecord struct {
	pending map[uint16][]byte
}

// Enqueue records a payload as sent under sequence seq, awaiting ack.
func (l *LocalAckRecord) Enqueue(seq uint16, payload []byte) {
	if l.pending == nil {
		l.pending = make(map[uint16][]byte)
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	l.pending[seq] = stored
}

// Ack folds the peer's reported (lastAcked, ackField) into the record. It
// removes every sequence it can now classify — acknowledged or dropped —
// and returns the payloads of those classified as dropped: sequences within
// the 33-entry window [lastAcked-32, lastAcked] whose ack bit is unset, plus
// anything older than that window that was still outstanding.
func (l *LocalAckRecord) Ack(lastAcked uint16, ackField uint32) []Dropped {
	if len(l.pending) == 0 {
		return nil
	}

	var dropped []Dropped
	for seq, payload := range l.pending {
		switch {
		case seq == lastAcked:
			delete(l.pending, seq)
		case WithinAckRange(seq, lastAcked, AckWindowSize) && IsNewer(seq, lastAcked):
			n := lastAcked - seq
			if ackField&(1<<(n-1)) != 0 {
				delete(l.pending, seq)
			} else {
				dropped = append(dropped, Dropped{Sequence: seq, Payload: payload})
				delete(l.pending, seq)
			}
		case IsNewer(lastAcked, seq):
			// Sent after the peer's ack snapshot; too early to judge.
		default:
			// Older than the tracked window: treat as lost.
			dropped = append(dropped, Dropped{Sequence: seq, Payload: payload})
			delete(l.pending, seq)
		}
	}
	return dropped
}

// Dropped is a payload the peer's ack window no longer accounts for.
type Dropped struct {
	Sequence uint16
	Payload  []byte
}
