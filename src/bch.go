package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	BCH parity for the beacon frame.
 *
 * Description:	Position gets real BCH(31,21) parity from a 10 bit
 *		LFSR.  The register is shifted before feedback is
 *		applied, not the textbook arrangement.  Receivers
 *		expect exactly these bits.  BCHEncode31_21(0x1A5F3)
 *		is 0x14F.
 *
 *		The id field is "BCH(12,12)", which has no parity at
 *		all.  The segment is reserved for future use and only
 *		carries the low 12 bits of the aircraft id.
 *
 *---------------------------------------------------------------*/

const BCH_N1 = 31 // Codeword length for position.
const BCH_K1 = 21 // Position data bits.

const BCH_N2 = 12 // Id "parity" length.

/*-------------------------------------------------------------------
 *
 * Name:	BCHEncode31_21
 *
 * Purpose:	Compute BCH(31,21) parity for the position field.
 *
 * Inputs:	data	- Position.  Only the low 21 bits are used.
 *
 * Returns:	10 bit parity.
 *
 *--------------------------------------------------------------------*/

func BCHEncode31_21(data uint32) uint16 {
	var reg uint32

	data &= (1 << BCH_K1) - 1

	for i := BCH_K1 - 1; i >= 0; i-- {
		var bit = (data >> uint(i)) & 1
		var msb = (reg >> (BCH_N1 - BCH_K1 - 1)) & 1

		reg = (reg << 1) | bit

		if msb^bit != 0 {
			reg ^= BCH_POLY
		}
	}

	return uint16(reg & ((1 << (BCH_N1 - BCH_K1)) - 1))
}

// BCHEncode12_12 returns the low 12 bits unchanged.
// It provides no error detection whatsoever.
func BCHEncode12_12(data uint16) uint16 {
	return data & ((1 << BCH_N2) - 1)
}
