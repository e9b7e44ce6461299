package proto

const (
	crcSeed uint16 = 0xffff
	crcPoly uint16 = 0xa001
)

// Checksum computes the reflected CRC-16 (polynomial 0xA001, seed 0xFFFF,
// no final XOR) over p. An empty input yields the seed.
func Checksum(p []byte) uint16 {
	crc := crcSeed
	for _, b := range p {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
