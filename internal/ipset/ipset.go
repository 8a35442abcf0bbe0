// Package ipset implements an aggregating radix-4 tree over the IPv4
// address space, used both for the sensor's configured dark-address
// range and for its source/destination include and exclude sets.
package ipset

import (
	"fmt"
	"io"
)

// bits is how many address bits each level of the tree consumes; lower
// values improve aggregation at the cost of a larger tree.
const (
	bits = 4
	subs = 1 << bits
)

// Tree is an address set. The zero value is not usable; create one with
// New.
type Tree struct {
	addr     uint32
	plen     uint8
	leaf     bool
	coverage uint64
	sub      [subs]*Tree
}

// New returns a new, empty set covering the whole address space.
func New() *Tree {
	return &Tree{leaf: true}
}

// NewFull returns a new set that already contains every address.
func NewFull() *Tree {
	t := New()
	t.Insert(0, 0xffffffff)
	return t
}

func (n *Tree) hostmask() uint32 {
	if n.plen == 0 {
		return 0xffffffff
	}
	return 0xffffffff >> n.plen
}

func (n *Tree) clear() {
	for i := range n.sub {
		n.sub[i] = nil
	}
}

// Insert adds every address in [first, last] to the set.
func (n *Tree) Insert(first, last uint32) {
	mask := n.hostmask()

	if n.coverage == uint64(mask)+1 {
		return
	}

	if first < n.addr {
		first = n.addr
	}
	if last > n.addr|mask {
		last = n.addr | mask
	}

	if first == n.addr && last == n.addr|mask {
		n.clear()
		n.leaf = true
		n.coverage = uint64(mask) + 1
		return
	}

	splen := n.plen + bits
	fsub := (first >> (32 - splen)) % subs
	lsub := (last >> (32 - splen)) % subs

	for i := fsub; i <= lsub; i++ {
		sn := n.sub[i]
		if sn == nil {
			sn = &Tree{
				addr: n.addr | (i << (32 - splen)),
				plen: splen,
				leaf: true,
			}
			n.sub[i] = sn
			n.leaf = false
		}
		n.coverage -= sn.coverage
		sn.Insert(first, last)
		n.coverage += sn.coverage
	}

	if n.coverage == uint64(mask)+1 {
		n.clear()
		n.leaf = true
	}
}

// Remove removes every address in [first, last] from the set.
func (n *Tree) Remove(first, last uint32) {
	if n.coverage == 0 {
		return
	}

	mask := n.hostmask()

	if first < n.addr {
		first = n.addr
	}
	if last > n.addr|mask {
		last = n.addr | mask
	}

	if first == n.addr && last == n.addr|mask {
		n.clear()
		n.leaf = true
		n.coverage = 0
		return
	}

	splen := n.plen + bits
	smask := mask >> bits
	fsub := (first >> (32 - splen)) % subs
	lsub := (last >> (32 - splen)) % subs

	if n.leaf && n.coverage == uint64(mask)+1 {
		n.coverage = 0
		n.leaf = false
		for i := uint32(0); i < subs; i++ {
			addr := n.addr | (i << (32 - splen))
			if !(first <= addr && last >= addr|smask) {
				sn := &Tree{
					addr:     addr,
					plen:     splen,
					leaf:     true,
					coverage: uint64(smask) + 1,
				}
				n.sub[i] = sn
				n.coverage += sn.coverage
			}
		}
	}

	for i := fsub; i <= lsub; i++ {
		sn := n.sub[i]
		if sn == nil {
			continue
		}
		n.coverage -= sn.coverage
		sn.Remove(first, last)
		n.coverage += sn.coverage
		if sn.coverage == 0 {
			n.sub[i] = nil
		}
	}
}

// Lookup reports whether addr is a member of the set.
func (n *Tree) Lookup(addr uint32) bool {
	mask := n.hostmask()
	if addr < n.addr || addr > n.addr|mask {
		return false
	}
	if n.coverage == uint64(mask)+1 {
		return true
	}
	sub := (addr >> (32 - n.plen - bits)) % subs
	if sn := n.sub[sub]; sn != nil {
		return sn.Lookup(addr)
	}
	return false
}

// Count returns the number of addresses in the set.
func (n *Tree) Count() uint64 {
	return n.coverage
}

// Print writes the set's leaf nodes, one CIDR block per line, in
// address order.
func (n *Tree) Print(w io.Writer) {
	if n.leaf {
		if n.coverage == 0 {
			return
		}
		if n.plen < 32 {
			fmt.Fprintf(w, "%d.%d.%d.%d/%d\n",
				n.addr>>24&0xff, n.addr>>16&0xff, n.addr>>8&0xff, n.addr&0xff, n.plen)
		} else {
			fmt.Fprintf(w, "%d.%d.%d.%d\n",
				n.addr>>24&0xff, n.addr>>16&0xff, n.addr>>8&0xff, n.addr&0xff)
		}
		return
	}
	for _, sn := range n.sub {
		if sn != nil {
			sn.Print(w)
		}
	}
}
