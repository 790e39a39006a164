// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package binary

// LEB128 as used by the WebAssembly binary format.

func appendUleb128(bs []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		bs = append(bs, b)
		if v == 0 {
			return bs
		}
	}
}

func appendSleb128(bs []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7 // arithmetic shift
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		bs = append(bs, b)
		if done {
			return bs
		}
	}
}

// readUleb128 returns the decoded value and the number of bytes consumed,
// or n == 0 if bs holds no complete value of at most maxBits.
func readUleb128(bs []byte, maxBits uint) (v uint64, n int) {
	shift := uint(0)
	for i, b := range bs {
		if shift >= maxBits {
			return 0, 0
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if maxBits < 64 && v>>maxBits != 0 {
				return 0, 0
			}
			return v, i + 1
		}
	}
	return 0, 0
}

func readSleb128(bs []byte, maxBits uint) (v int64, n int) {
	shift := uint(0)
	for i, b := range bs {
		if shift >= maxBits {
			return 0, 0
		}
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			if maxBits < 64 {
				min, max := int64(-1)<<(maxBits-1), int64(1)<<(maxBits-1)-1
				if v < min || v > max {
					return 0, 0
				}
			}
			return v, i + 1
		}
	}
	return 0, 0
}
