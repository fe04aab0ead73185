package protocol

import "hash/crc32"

// Name and Version identify this build of the protocol. Changing either
// changes the wire-level CRC32 and breaks interoperation with older builds.
const (
	Name    = "rudp"
	Version = "0.1.0"
)

var versionString = Name + "-" + Version
var versionCRC32 = crc32.ChecksumIEEE([]byte(versionString))

// VersionString returns the literal string the CRC32 is computed from.
func VersionString() string {
	return versionString
}

// VersionCRC32 returns the CRC32 of the current protocol version. It is
// computed once at package init and treated as immutable thereafter.
func VersionCRC32() uint32 {
	return versionCRC32
}

// ValidVersion reports whether a received CRC32 matches this build's.
func ValidVersion(crc uint32) bool {
	return crc == versionCRC32
}
