package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Convert between latitude / longitude and the position
 *		and offset fields of the frame.
 *
 * Description:	Same arrangement as the Cospas-Sarsat standard
 *		location protocol.
 *
 *		Position, 21 bits, to the nearest 1/4 degree:
 *
 *			N/S flag	 1	1 = south
 *			latitude	 9	1/4 degrees, 0 .. 90
 *			E/W flag	 1	1 = west
 *			longitude	10	1/4 degrees, 0 .. 180
 *
 *		Offset, 20 bits, from that to the actual location,
 *		latitude then longitude, each:
 *
 *			sign		 1	1 = add, 0 = subtract
 *			minutes		 5	0 .. 30
 *			seconds		 4	4 second steps, 0 .. 56
 *
 *		Absolute values are used, so "add" is away from the
 *		equator / prime meridian.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

const quarterDegreeSeconds = 900 // 15 minutes
const offsetSecondStep = 4

var ErrBadLocation = errors.New("location out of range")

func D2R(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func LatLngDegrees(lat, lon float64) s2.LatLng {
	return s2.LatLng{
		Lat: s1.Angle(D2R(lat)),
		Lng: s1.Angle(D2R(lon)),
	}
}

// Encodes one coordinate magnitude in 1/4 degrees plus a sign/min/sec offset.
func encodeAngle(seconds int64) (quarters uint32, offset uint32) {
	var q = (seconds + quarterDegreeSeconds/2) / quarterDegreeSeconds
	var residual = seconds - q*quarterDegreeSeconds // -450 .. 449

	var sign uint32 = 1
	if residual < 0 {
		sign = 0
		residual = -residual
	}

	var minutes = uint32(residual / 60)
	var secs = uint32(residual%60) / offsetSecondStep

	return uint32(q), sign<<9 | minutes<<4 | secs
}

func decodeAngle(quarters uint32, offset uint32) int64 {
	var seconds = int64(quarters) * quarterDegreeSeconds
	var delta = int64((offset>>4)&0x1F)*60 + int64(offset&0x0F)*offsetSecondStep

	if offset&(1<<9) != 0 {
		return seconds + delta
	}

	return seconds - delta
}

/*-------------------------------------------------------------------
 *
 * Name:	EncodeLocation
 *
 * Purpose:	Fill in position and position offset from a location.
 *
 * Returns:	21 bit position, 20 bit offset.
 *
 *		Offsets are truncated to 4 seconds, so the round trip is
 *		good to about 120 m.
 *
 *--------------------------------------------------------------------*/

func EncodeLocation(ll s2.LatLng) (position uint32, offset uint32, err error) {
	var lat = ll.Lat.Degrees()
	var lon = ll.Lng.Degrees()

	if !ll.IsValid() || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, fmt.Errorf("latitude %f longitude %f: %w", lat, lon, ErrBadLocation)
	}

	var latSeconds = int64(math.Round(math.Abs(lat) * 3600))
	var lonSeconds = int64(math.Round(math.Abs(lon) * 3600))

	var latQ, latOff = encodeAngle(latSeconds)
	var lonQ, lonOff = encodeAngle(lonSeconds)

	// 180 degrees is 720 quarters, fits in 10 bits.
	var south, west uint32
	if lat < 0 {
		south = 1
	}
	if lon < 0 {
		west = 1
	}

	position = south<<20 | latQ<<11 | west<<10 | lonQ
	offset = latOff<<10 | lonOff

	return position, offset, nil
}

// DecodeLocation is the inverse of EncodeLocation.
func DecodeLocation(position uint32, offset uint32) s2.LatLng {
	var latSeconds = decodeAngle((position>>11)&0x1FF, (offset>>10)&0x3FF)
	var lonSeconds = decodeAngle(position&0x3FF, offset&0x3FF)

	var lat = float64(latSeconds) / 3600
	var lon = float64(lonSeconds) / 3600

	if position&(1<<20) != 0 {
		lat = -lat
	}
	if position&(1<<10) != 0 {
		lon = -lon
	}

	return LatLngDegrees(lat, lon)
}

// FormatMGRS gives the MGRS grid reference, 5 digit precision.
func FormatMGRS(ll s2.LatLng) (string, error) {
	var mgrsCoord, err = coordconv.DefaultMGRSConverter.ConvertFromGeodetic(ll, 5)
	if err != nil {
		return "", err
	}

	return fmt.Sprint(mgrsCoord), nil
}

// ParseMGRS is the inverse of FormatMGRS, to the centre of the grid square.
func ParseMGRS(ref string) (s2.LatLng, error) {
	var ll, err = coordconv.DefaultMGRSConverter.ConvertToGeodetic(ref)
	if err != nil {
		return s2.LatLng{}, fmt.Errorf("MGRS %q: %w", ref, err)
	}

	return ll, nil
}
