// Package arpclaim implements the ARP claim state machine that lets the
// sensor take over unused IPv4 addresses: it watches ARP requests for a
// target address, and once enough unanswered requests for that address
// have been observed over a long enough span, the sensor starts
// answering ARP requests for it itself.
package arpclaim

import (
	"fmt"

	"github.com/unioslo/flytrap/internal/ipset"
)

// Never marks a leaf that has not yet been assigned a first-seen time.
const Never = ^uint64(0)

// State machine constants, in milliseconds, ported from the reference
// implementation's arp_register/packet_analyze_arp thresholds.
const (
	MinReq  = 3
	Timeout = 3000
	Stale   = 30000
	Expire  = 300000
)

const (
	stride = 4
	subs   = 1 << stride
)

// node is both a leaf (an observed address) and an inner node (a
// subtree fence); which fields are meaningful depends on leaf.
type node struct {
	addr uint32
	plen uint8
	leaf bool

	// leaf fields
	first    uint64
	last     uint64
	ether    [6]byte
	nreq     uint
	claimed  bool
	reserved bool

	// fences: on an inner node, the oldest/newest observation below it;
	// a leaf keeps its latest observation in newest
	oldest uint64
	newest uint64

	sub [subs]*node
}

// Tree is an ARP claim state machine for one IPv4 address space.
type Tree struct {
	root   node
	nnodes int
	nleafs int
}

// New returns an empty claim tree.
func New() *Tree {
	t := &Tree{}
	t.root.first = Never
	return t
}

func newNode(addr uint32, plen uint8) *node {
	shift := 32 - plen
	var mask uint32
	if shift < 32 {
		mask = ^uint32(0) << shift
	}
	return &node{
		addr:  addr & mask,
		plen:  plen,
		leaf:  true,
		first: Never,
	}
}

func (t *Tree) deleteNode(n *node) {
	if n == nil {
		return
	}
	if n.plen == 32 {
		t.nleafs--
	} else {
		for _, sn := range n.sub {
			t.deleteNode(sn)
		}
	}
	t.nnodes--
}

// insert finds or creates the leaf for addr, recording when as its
// last-seen time (and first-seen time, if new), and propagates the
// oldest/newest fences up through the inner nodes on the path.
func (t *Tree) insert(n *node, addr uint32, when uint64) *node {
	if n == nil {
		n = &t.root
	}
	if n.plen == 32 {
		if when < n.first {
			n.first = when
		}
		if when > n.last {
			n.last = when
		}
		if when > n.newest {
			n.newest = when
		}
		return n
	}
	splen := n.plen + stride
	sub := (addr >> (32 - splen)) % subs
	sn := n.sub[sub]
	if sn == nil {
		sn = newNode(addr, splen)
		t.nnodes++
		if sn.plen == 32 {
			t.nleafs++
		}
		n.sub[sub] = sn
	}
	rn := t.insert(sn, addr, when)
	if sn.newest < n.oldest {
		n.oldest = sn.newest
	}
	if sn.newest > n.newest {
		n.newest = sn.newest
	}
	return rn
}

// expire drops any subtree whose newest observation predates cutoff and
// recomputes the surviving fences, starting from n (the whole tree if
// n is nil).
func (t *Tree) expire(n *node, cutoff uint64) {
	if n == nil {
		n = &t.root
	}
	n.oldest = Never
	n.newest = 0
	for i, sn := range n.sub {
		if sn == nil {
			continue
		}
		if sn.plen < 32 && sn.oldest < cutoff {
			t.expire(sn, cutoff)
		}
		if sn.newest < cutoff {
			t.deleteNode(sn)
			n.sub[i] = nil
			continue
		}
		if sn.newest < n.oldest {
			n.oldest = sn.newest
		}
		if sn.newest > n.newest {
			n.newest = sn.newest
		}
	}
}

// Periodic runs expiry against packet time when, dropping any entry
// that has not been seen within Expire milliseconds of it.
func (t *Tree) Periodic(when uint64) {
	t.expire(nil, boundedSub(when, Expire))
}

// MaybeExpire runs Periodic only if the tree's oldest fence is already
// older than the expiry cutoff for when, matching
// packet_analyze_arp's "assume packet time is <= current time" guard
// against rescanning the whole tree on every packet.
func (t *Tree) MaybeExpire(when uint64) {
	cutoff := boundedSub(when, Expire)
	if t.root.oldest < cutoff {
		t.expire(nil, cutoff)
	}
}

func boundedSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Register records that ether was seen sending traffic from addr at
// when, logging (via the returned moved flag) whether addr has moved
// to a new Ethernet address, and resets the unanswered-request counter.
func (t *Tree) Register(addr uint32, ether [6]byte, when uint64) (moved, seenBefore bool) {
	an := t.insert(nil, addr, when)
	var zero [6]byte
	if an.ether != ether {
		seenBefore = an.ether != zero
		an.ether = ether
	}
	an.nreq = 0
	return seenBefore, seenBefore
}

// Lookup returns the Ethernet address currently associated with addr,
// if any.
func (t *Tree) Lookup(addr uint32) (ether [6]byte, ok bool) {
	n := &t.root
	shifts := [8]uint{28, 24, 20, 16, 12, 8, 4, 0}
	for _, sh := range shifts {
		sub := (addr >> sh) % subs
		n = n.sub[sub]
		if n == nil {
			return ether, false
		}
	}
	return n.ether, true
}

// Reserve marks addr as reserved: the sensor will never claim it, even
// if ARP requests for it go unanswered.
func (t *Tree) Reserve(addr uint32) {
	an := t.insert(nil, addr, 0)
	an.reserved = true
}

// Verdict describes what packet_analyze_arp should do in response to an
// ARP "who-has" request for a target address.
type Verdict int

const (
	// Ignore means no reply should be sent.
	Ignore Verdict = iota
	// Claim means the sensor should answer on the target's behalf.
	Claim
)

// OnWhoHas processes an ARP request for target, sent by sender at
// senderEther, observed at packet time when. dstSet, if non-nil,
// restricts claiming to addresses within it. It returns Claim when the
// sensor should send an ARP reply for target.
func (t *Tree) OnWhoHas(target, sender uint32, senderEther [6]byte, when uint64, dstSet *ipset.Tree) Verdict {
	if dstSet != nil && !dstSet.Lookup(target) {
		return Ignore
	}

	t.Register(sender, senderEther, when)

	an := t.insert(nil, target, when)
	if an.first == Never {
		an.first = when
	}

	switch {
	case an.reserved:
		an.nreq = 0
		return Ignore
	case an.claimed:
		an.nreq = 0
		return Claim
	case an.nreq == 0 || when-an.last >= Stale:
		an.nreq = 1
		an.first = when
		return Ignore
	case an.nreq >= MinReq && when-an.first >= Timeout:
		an.claimed = true
		an.nreq = 0
		return Claim
	default:
		an.nreq++
		an.last = when
		return Ignore
	}
}

// OnIsAt registers both the sender and target of an observed ARP reply,
// learning their Ethernet addresses without claiming anything.
func (t *Tree) OnIsAt(sender, target uint32, senderEther, targetEther [6]byte, when uint64) {
	t.Register(sender, senderEther, when)
	t.Register(target, targetEther, when)
}

// Stats reports the current node and leaf counts, mirroring the
// reference implementation's narpn/nleaves debug counters.
func (t *Tree) Stats() string {
	return fmt.Sprintf("%d nodes / %d leaves", t.nnodes, t.nleafs)
}
