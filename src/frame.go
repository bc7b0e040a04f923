package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Build the beacon bit frame.
 *
 * Description:	Layout, in transmission order:
 *
 *			sync			15	all 1
 *			frame sync		 9	0x1AC
 *			country code		10
 *			aircraft id		24
 *			position		21
 *			position offset		20
 *			BCH(31,21) of position	10
 *			BCH(12,12) of id	12	low 12 bits of id
 *
 *		Every field is sent MSB first.  The frame is built once
 *		at startup and is read only after that.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strings"
)

const SYNC_BITS = 15
const FRAME_SYNC_BITS = 9
const COUNTRY_BITS = 10
const AIRCRAFT_BITS = 24
const POSITION_BITS = 21
const OFFSET_BITS = 20
const BCH_POS_BITS = BCH_N1 - BCH_K1 // 10
const BCH_ID_BITS = BCH_N2           // 12

const MESSAGE_BITS = SYNC_BITS + FRAME_SYNC_BITS + COUNTRY_BITS +
	AIRCRAFT_BITS + POSITION_BITS + OFFSET_BITS +
	BCH_POS_BITS + BCH_ID_BITS // 121

const FRAME_SYNC = 0x1AC // 110101100

type frameSegment struct {
	name  string
	width int
}

// Must stay in transmission order.
var frameSegments = []frameSegment{
	{"sync", SYNC_BITS},
	{"frame-sync", FRAME_SYNC_BITS},
	{"country", COUNTRY_BITS},
	{"aircraft", AIRCRAFT_BITS},
	{"position", POSITION_BITS},
	{"offset", OFFSET_BITS},
	{"pos-parity", BCH_POS_BITS},
	{"id-parity", BCH_ID_BITS},
}

// Payload holds the values the beacon is configured to send.
type Payload struct {
	CountryCode    uint16 `yaml:"country_code"`
	AircraftID     uint32 `yaml:"aircraft_id"`
	Position       uint32 `yaml:"position"`
	PositionOffset uint32 `yaml:"position_offset"`
}

var DefaultPayload = Payload{
	CountryCode:    0x2A5,
	AircraftID:     0x00A5F3C,
	Position:       0x1A5F3,
	PositionOffset: 0x0A5F3,
}

var ErrFieldRange = errors.New("value does not fit field")

// Validate reports fields that would be truncated by BuildFrame.
func (p Payload) Validate() error {
	var checks = []struct {
		name  string
		value uint32
		width int
	}{
		{"country_code", uint32(p.CountryCode), COUNTRY_BITS},
		{"aircraft_id", p.AircraftID, AIRCRAFT_BITS},
		{"position", p.Position, POSITION_BITS},
		{"position_offset", p.PositionOffset, OFFSET_BITS},
	}

	for _, c := range checks {
		if c.value>>uint(c.width) != 0 {
			return fmt.Errorf("%s 0x%X is wider than %d bits: %w", c.name, c.value, c.width, ErrFieldRange)
		}
	}

	return nil
}

// Frame is one bit per element, 0 or 1.
type Frame [MESSAGE_BITS]uint8

/*-------------------------------------------------------------------
 *
 * Name:	BuildFrame
 *
 * Purpose:	Compose sync, payload and parity into a new frame.
 *
 * Inputs:	p	- Payload.  Oversize fields are masked to
 *			  their width, use Validate first to catch that.
 *
 * Returns:	Completed frame.  Panics if the segments written do
 *		not add up to MESSAGE_BITS.
 *
 *--------------------------------------------------------------------*/

func BuildFrame(p Payload) *Frame {
	var f = new(Frame)
	var bp = NewBitPacker(f[:])

	bp.PutOnes(SYNC_BITS)
	bp.PutBits(FRAME_SYNC, FRAME_SYNC_BITS)

	bp.PutBits(uint32(p.CountryCode), COUNTRY_BITS)
	bp.PutBits(p.AircraftID, AIRCRAFT_BITS)
	bp.PutBits(p.Position, POSITION_BITS)
	bp.PutBits(p.PositionOffset, OFFSET_BITS)

	var positionParity = BCHEncode31_21(p.Position)
	bp.PutBits(uint32(positionParity), BCH_POS_BITS)

	var idParity = BCHEncode12_12(uint16(p.AircraftID & 0xFFF))
	bp.PutBits(uint32(idParity), BCH_ID_BITS)

	assertf(bp.Len() == MESSAGE_BITS, "frame has %d bits, expected %d", bp.Len(), MESSAGE_BITS)

	return f
}

// FrameFields is a frame split back into its segments.
type FrameFields struct {
	Sync           uint32
	FrameSync      uint32
	Payload        Payload
	PositionParity uint16
	IDParity       uint16
}

var (
	ErrBadSync        = errors.New("sync bits are not all 1")
	ErrBadFrameSync   = errors.New("frame sync mismatch")
	ErrPositionParity = errors.New("position parity mismatch")
	ErrIDParity       = errors.New("id parity mismatch")
)

// segment returns the bits of frameSegments[index].
func (f *Frame) segment(index int) []uint8 {
	var start = 0
	for i := range index {
		start += frameSegments[i].width
	}

	return f[start : start+frameSegments[index].width]
}

/*-------------------------------------------------------------------
 *
 * Name:	ParseFrame
 *
 * Purpose:	Split a frame into its fields and check sync and parity.
 *
 * Returns:	Fields, which are filled in even if there is an error,
 *		and the first problem found.
 *
 * Description:	Used for the dump tool and for tests.  This is not a
 *		receiver, nothing gets corrected.
 *
 *--------------------------------------------------------------------*/

func ParseFrame(f *Frame) (FrameFields, error) {
	var ff FrameFields

	ff.Sync = GetBits(f.segment(0))
	ff.FrameSync = GetBits(f.segment(1))
	ff.Payload.CountryCode = uint16(GetBits(f.segment(2)))
	ff.Payload.AircraftID = GetBits(f.segment(3))
	ff.Payload.Position = GetBits(f.segment(4))
	ff.Payload.PositionOffset = GetBits(f.segment(5))
	ff.PositionParity = uint16(GetBits(f.segment(6)))
	ff.IDParity = uint16(GetBits(f.segment(7)))

	switch {
	case ff.Sync != (1<<SYNC_BITS)-1:
		return ff, fmt.Errorf("sync 0x%04X: %w", ff.Sync, ErrBadSync)
	case ff.FrameSync != FRAME_SYNC:
		return ff, fmt.Errorf("frame sync 0x%03X, expected 0x%03X: %w", ff.FrameSync, FRAME_SYNC, ErrBadFrameSync)
	}

	var expected = BCHEncode31_21(ff.Payload.Position)
	if ff.PositionParity != expected {
		return ff, fmt.Errorf("got 0x%03X, expected 0x%03X: %w", ff.PositionParity, expected, ErrPositionParity)
	}

	expected = BCHEncode12_12(uint16(ff.Payload.AircraftID & 0xFFF))
	if ff.IDParity != expected {
		return ff, fmt.Errorf("got 0x%03X, expected 0x%03X: %w", ff.IDParity, expected, ErrIDParity)
	}

	return ff, nil
}

func (f *Frame) String() string {
	var sb strings.Builder
	sb.Grow(MESSAGE_BITS)

	for _, b := range f {
		sb.WriteByte('0' + b)
	}

	return sb.String()
}

// Segments renders one line per segment: bit range, name, bits.
func (f *Frame) Segments() string {
	var sb strings.Builder
	var start = 0

	for i, seg := range frameSegments {
		var bits = f.segment(i)
		fmt.Fprintf(&sb, "%3d..%3d  %-10s  ", start, start+seg.width-1, seg.name)
		for _, b := range bits {
			sb.WriteByte('0' + b)
		}
		fmt.Fprintf(&sb, "  0x%X\n", GetBits(bits))
		start += seg.width
	}

	return sb.String()
}
