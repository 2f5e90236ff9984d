package unii

// CRC16 calculates the CRC-16 checksum used by UNii messages: polynomial
// 0x1021, initial value 0x0000, no reflection, no final XOR (CRC-16/XMODEM).
func CRC16(data []byte) uint16 {
	crc := uint16(0x0000)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
