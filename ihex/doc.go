// Package ihex parses Intel HEX firmware images for funkboot targets.
//
// # Intel HEX Format
//
// Every line is one record, hex-encoded after a ':' start code:
//
//	:[ByteCount(2)][Address(4)][RecordType(2)][Data(2*ByteCount)][Checksum(2)]
//
// The checksum is the two's complement of the sum of all other record bytes.
//
// Supported record types:
//
//	00 = Data
//	01 = End Of File
//	02 = Extended Segment Address (base = value << 4)
//	03 = Start Segment Address (CS:IP)
//	04 = Extended Linear Address (base = value << 16)
//	05 = Start Linear Address
//
// Example:
//
//	:100000000C945C000C946E000C946E000C946E00CA
//	:00000001FF
//
// # Pages
//
// A funkboot device programs flash one erase page at a time. Image.Pages
// splits the image into the pages it touches, padding the gaps with 0xFF,
// so the host can write each page front to back:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pages, err := img.Pages(128, 0x3C00)
//
// Image.Digest returns a BLAKE3 hash of the flattened image, which can be
// compared with the digest of the flash content read back from a device.
package ihex
