package index

import (
	"encoding/binary"
	"time"
)

// key = invTime(8) + 0x00 + slug, so a forward cursor walks newest first.
// Posts without a date sort last.
func makeTimeSlugKey(unixNano int64, slug string) []byte {
	buf := make([]byte, 8, 8+1+len(slug))
	binary.BigEndian.PutUint64(buf, ^uint64(unixNano))
	buf = append(buf, 0x00)
	return append(buf, slug...)
}

func slugFromTimeSlugKey(k []byte) string {
	if len(k) < 8+2 || k[8] != 0x00 {
		return ""
	}
	return string(k[9:])
}

// sortNano maps a post date onto the key clock. Zero and pre-1970 dates
// collapse to 0.
func sortNano(t time.Time) int64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return t.UnixNano()
}
