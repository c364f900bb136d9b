package format

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the hard bound on one outgoing message.
const MaxMessageLength = 4000

// Chunk packs header and entries into messages of at most limit characters,
// separating entries with a newline. An entry that fits is never split
// across messages; a longer one is cut at line breaks where possible and
// at rune boundaries otherwise.
func Chunk(header string, entries []string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	var (
		out []string
		cur string
		n   int
	)
	flush := func() {
		if cur != "" {
			out = append(out, cur)
		}
		cur, n = "", 0
	}
	add := func(s string) {
		size := utf8.RuneCountInString(s)
		if size > limit {
			flush()
			out = append(out, split(s, limit)...)
			return
		}
		sep := 0
		if cur != "" {
			sep = 1
		}
		if cur != "" && n+sep+size > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur += "\n"
		}
		cur += s
		n += sep + size
	}

	if header != "" {
		add(header)
	}
	for _, e := range entries {
		add(e)
	}
	flush()
	return out
}

// split cuts s into pieces of at most limit runes.
func split(s string, limit int) []string {
	var parts []string
	for utf8.RuneCountInString(s) > limit {
		runes := []rune(s)
		head := string(runes[:limit])
		if i := strings.LastIndexByte(head, '\n'); i > 0 {
			head = head[:i]
			s = s[i+1:]
		} else {
			s = string(runes[limit:])
		}
		parts = append(parts, head)
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
