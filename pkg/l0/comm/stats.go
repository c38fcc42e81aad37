package comm

import "sync/atomic"

// Stats counts traffic per channel and failures per category.
// Unlike ErrorFlags, counters are never cleared by polling.
// All methods are safe on a nil *Stats.
type Stats struct {
	numReceived    [MaxChannels]uint64
	numUndelivered [MaxChannels]uint64
	numSent        [MaxChannels]uint64
	numErrors      [NumErrorCategories]uint64
}

// ChannelStats is a snapshot of counters of one channel.
type ChannelStats struct {
	Received    uint64
	Undelivered uint64
	Sent        uint64
}

func (s *Stats) received(ch Channel) {
	if s != nil {
		atomic.AddUint64(&s.numReceived[ch.Masked()], 1)
	}
}

func (s *Stats) undelivered(ch Channel) {
	if s != nil {
		atomic.AddUint64(&s.numUndelivered[ch.Masked()], 1)
	}
}

func (s *Stats) sent(ch Channel) {
	if s != nil {
		atomic.AddUint64(&s.numSent[ch.Masked()], 1)
	}
}

func (s *Stats) failed(f ErrorFlags) {
	if s == nil {
		return
	}
	for n := 0; n < NumErrorCategories; n++ {
		if f&(1<<uint(n)) != 0 {
			atomic.AddUint64(&s.numErrors[n], 1)
		}
	}
}

// Channel returns counters of a channel.
func (s *Stats) Channel(ch Channel) (cs ChannelStats) {
	if s == nil {
		return
	}
	ch = ch.Masked()
	cs.Received = atomic.LoadUint64(&s.numReceived[ch])
	cs.Undelivered = atomic.LoadUint64(&s.numUndelivered[ch])
	cs.Sent = atomic.LoadUint64(&s.numSent[ch])
	return
}

// Errors returns the number of times a single category was raised.
func (s *Stats) Errors(f ErrorFlags) uint64 {
	if s == nil {
		return 0
	}
	for n := 0; n < NumErrorCategories; n++ {
		if f == 1<<uint(n) {
			return atomic.LoadUint64(&s.numErrors[n])
		}
	}
	return 0
}

// Reset clears all counters.
func (s *Stats) Reset() {
	if s == nil {
		return
	}
	for n := range s.numReceived {
		atomic.StoreUint64(&s.numReceived[n], 0)
		atomic.StoreUint64(&s.numUndelivered[n], 0)
		atomic.StoreUint64(&s.numSent[n], 0)
	}
	for n := range s.numErrors {
		atomic.StoreUint64(&s.numErrors[n], 0)
	}
}
