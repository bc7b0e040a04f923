package beacon

import (
	"fmt"
	"io"
)

// HexDump writes p 16 bytes to a line, offset first and printable
// characters at the end.
func HexDump(w io.Writer, p []byte) {
	var offset = 0
	var length = len(p)

	for length > 0 {
		var n = min(length, 16)

		fmt.Fprintf(w, "  %03x: ", offset)

		for i := 0; i < n; i++ {
			fmt.Fprintf(w, " %02x", p[i])
		}

		for i := n; i < 16; i++ {
			fmt.Fprintf(w, "   ")
		}

		fmt.Fprintf(w, "  ")

		for i := 0; i < n; i++ {
			if p[i] >= 0x20 && p[i] <= 0x7E {
				fmt.Fprintf(w, "%c", p[i])
			} else {
				fmt.Fprintf(w, ".")
			}
		}

		fmt.Fprintf(w, "\n")

		p = p[n:]
		offset += n
		length -= n
	}
}

// SerialWire is what the serial DAC sink would send for codes.
func SerialWire(codes []uint16) []byte {
	var wire = make([]byte, 0, 2*len(codes))

	for _, c := range codes {
		var b0, b1 = EncodeSerialSample(c)
		wire = append(wire, b0, b1)
	}

	return wire
}
