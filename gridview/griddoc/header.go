package griddoc

import (
	"bytes"
	"strings"
)

// parseHeader extracts the header from in, if any. The header has the following format
//
//	# <title>
//	:<key>: <value>
//	:<key>: <value>
//
// A value is continued on the next line if the line ends with a backslash. It returns the title,
// the metadata and the remaining input.
func parseHeader(in []byte) (string, map[string]string, []byte) {
	var title string
	meta := make(map[string]string)

	// The title is the first line if it's a level 1 heading.
	if line, rest, _ := bytes.Cut(in, []byte("\n")); bytes.HasPrefix(line, []byte("# ")) {
		title = string(bytes.TrimSpace(line[1:]))
		in = rest
	}

	for bytes.HasPrefix(in, []byte(":")) {
		key, rest, ok := bytes.Cut(in[1:], []byte(":"))
		if !ok {
			break
		}
		var val strings.Builder
		for {
			var line []byte
			line, rest, _ = bytes.Cut(rest, []byte("\n"))
			v, cont := bytes.CutSuffix(line, []byte(`\`))
			val.Write(v)
			if !cont || len(rest) == 0 {
				break
			}
			val.WriteByte('\n')
		}
		meta[string(key)] = strings.TrimSpace(val.String())
		in = rest
	}

	return title, meta, bytes.TrimLeft(in, "\n")
}
