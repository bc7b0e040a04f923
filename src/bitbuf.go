package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Serialize integer fields into a bit buffer, most
 *		significant bit first, one bit per element.
 *
 *---------------------------------------------------------------*/

type BitPacker struct {
	buf []uint8
	n   int
}

func NewBitPacker(buf []uint8) *BitPacker {
	return &BitPacker{buf: buf, n: 0}
}

// PutBits appends the low width bits of value, MSB first.
func (p *BitPacker) PutBits(value uint32, width int) {
	assertf(width >= 0 && width <= 32, "bad field width %d", width)
	assertf(p.n+width <= len(p.buf), "bit buffer overrun: %d + %d > %d", p.n, width, len(p.buf))

	for i := width - 1; i >= 0; i-- {
		p.buf[p.n] = uint8((value >> uint(i)) & 1)
		p.n++
	}
}

// PutOnes appends count 1 bits.
func (p *BitPacker) PutOnes(count int) {
	assertf(p.n+count <= len(p.buf), "bit buffer overrun: %d + %d > %d", p.n, count, len(p.buf))

	for range count {
		p.buf[p.n] = 1
		p.n++
	}
}

// Len is the number of bits written so far.
func (p *BitPacker) Len() int {
	return p.n
}

// GetBits folds an MSB first bit slice back into an integer.
func GetBits(bits []uint8) uint32 {
	assertf(len(bits) <= 32, "field too wide: %d bits", len(bits))

	var value uint32
	for _, b := range bits {
		value = (value << 1) | uint32(b&1)
	}

	return value
}
