package game

// roomCodeAlphabet deliberately matches the code space shared with clients:
// exactly six characters from A-Z0-9.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeFromID derives a 6-character room code from a room instance
// identifier. The fold uses 32-bit signed wraparound (h = h*31 + char) so
// codes stay stable across implementations that persist or share them; the
// same identifier always yields the same code.
func RoomCodeFromID(id string) string {
	var hash int32
	for _, c := range id {
		hash = hash*31 + int32(c)
	}

	v := int64(hash)
	if v < 0 {
		v = -v
	}

	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeAlphabet[v%int64(len(roomCodeAlphabet))]
		v /= int64(len(roomCodeAlphabet))
	}
	return string(code)
}
