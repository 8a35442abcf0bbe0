/*
 * COPYRIGHT 2018 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package netutil holds the MAC/IPv4 conversion helpers the sensor uses
// to key its claim and address-set trees and to build Ethernet frames.
package netutil

import (
	"bytes"
	"encoding/binary"
	"net"
)

// Well known link-layer addresses.
var (
	MacZero  = net.HardwareAddr([]byte{0, 0, 0, 0, 0, 0})
	MacBcast = net.HardwareAddr([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	macMcast = net.HardwareAddr([]byte{0x01, 0x00, 0x5E})
)

// IsMacMulticast reports whether a is an IPv4 multicast MAC address
// (the 01:00:5E/25 block).
func IsMacMulticast(a net.HardwareAddr) bool {
	return len(a) == 6 && a[3]&0x80 == 0 && bytes.HasPrefix(a, macMcast)
}

// HWAddrToUint64 encodes a as a uint64, the address occupying the low
// 48 bits.
func HWAddrToUint64(a net.HardwareAddr) uint64 {
	b := make([]byte, 8)
	copy(b[2:], a)
	return binary.BigEndian.Uint64(b)
}

// Uint64ToHWAddr decodes a uint64 produced by HWAddrToUint64 back into a
// net.HardwareAddr.
func Uint64ToHWAddr(a uint64) net.HardwareAddr {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, a)
	return net.HardwareAddr(b[2:])
}

// ToEther copies a net.HardwareAddr into the fixed-size array the
// packet-construction and claim-tree code passes around by value.
func ToEther(a net.HardwareAddr) [6]byte {
	var e [6]byte
	copy(e[:], a)
	return e
}

// IPAddrToUint32 encodes a as a big-endian uint32; it returns 0 if a is
// not a valid IPv4 address.
func IPAddrToUint32(a net.IP) uint32 {
	b := a.To4()
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Uint32ToIPAddr decodes a uint32 produced by IPAddrToUint32 back into a
// net.IP.
func Uint32ToIPAddr(a uint32) net.IP {
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, a)
	return ip
}
