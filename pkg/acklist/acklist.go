// Package acklist implements the ack/nack run-length record list
// (spec §4.5): a sorted, deduplicated set of 24-bit packet numbers
// encoded as a sequence of single/range records with no length
// prefix on the wire.
package acklist

import (
	"sort"

	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

const (
	recordTypeRange  = 0
	recordTypeSingle = 1
)

type pair struct {
	start, end uint32
}

// List is an ordered set of 24-bit packet numbers.
type List struct {
	pairs []pair
}

// FromSorted builds a List from a strictly increasing sequence of
// packet numbers, coalescing consecutive integers into range records.
func FromSorted(ids []uint32) *List {
	if len(ids) == 0 {
		return &List{}
	}
	l := &List{}
	start, end := ids[0], ids[0]
	for _, id := range ids[1:] {
		if id == end+1 {
			end = id
			continue
		}
		l.pairs = append(l.pairs, pair{start, end})
		start, end = id, id
	}
	l.pairs = append(l.pairs, pair{start, end})
	return l
}

// Size returns the total count of packet numbers covered by l.
func (l *List) Size() uint32 {
	var n uint32
	for _, p := range l.pairs {
		n += p.end - p.start + 1
	}
	return n
}

// ToSorted returns the covered packet numbers in ascending order.
func (l *List) ToSorted() []uint32 {
	out := make([]uint32, 0, l.Size())
	for _, p := range l.pairs {
		for id := p.start; id <= p.end; id++ {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports whether id is covered by l.
func (l *List) Contains(id uint32) bool {
	for _, p := range l.pairs {
		if id >= p.start && id <= p.end {
			return true
		}
	}
	return false
}

// Encode appends l's wire form to sink. The encoder never emits a
// length prefix; framing is the caller's responsibility (spec §4.5).
func Encode(sink []byte, l *List) []byte {
	for _, p := range l.pairs {
		if p.start == p.end {
			sink = append(sink, recordTypeSingle)
			sink = wire.WriteTriadLE(sink, wire.Triad(p.start))
		} else {
			sink = append(sink, recordTypeRange)
			sink = wire.WriteTriadLE(sink, wire.Triad(p.start))
			sink = wire.WriteTriadLE(sink, wire.Triad(p.end))
		}
	}
	return sink
}

// Decode reads records until c is exhausted, sorts pairs by start,
// and deduplicates overlaps by advancing start past any previous end,
// per spec §4.5.
func Decode(c *wire.Cursor) (*List, error) {
	var pairs []pair
	for c.Remaining() > 0 {
		recordType, err := wire.ReadUint8(c)
		if err != nil {
			return nil, err
		}
		var p pair
		switch recordType {
		case recordTypeSingle:
			id, err := wire.ReadTriadLE(c)
			if err != nil {
				return nil, err
			}
			p = pair{uint32(id), uint32(id)}
		case recordTypeRange:
			start, err := wire.ReadTriadLE(c)
			if err != nil {
				return nil, err
			}
			end, err := wire.ReadTriadLE(c)
			if err != nil {
				return nil, err
			}
			p = pair{uint32(start), uint32(end)}
		default:
			return nil, wire.ErrOutOfRange
		}
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].start < pairs[j].start })

	var last uint32
	haveLast := false
	deduped := pairs[:0]
	for _, p := range pairs {
		if haveLast && p.start <= last {
			if p.end <= last {
				continue // wholly covered by an earlier pair
			}
			p.start = last + 1
		}
		deduped = append(deduped, p)
		last = p.end
		haveLast = true
	}

	return &List{pairs: deduped}, nil
}
