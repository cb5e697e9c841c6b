package storage

// headerEnd returns the offset just past the closing brace of the object that starts
// at content[0], or -1 when content does not start with '{' or the braces never
// balance. String literals are opaque: braces inside them are not counted and a
// backslash escapes the following character.
func headerEnd(content string) int {
	if len(content) == 0 || content[0] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(content); i++ {
		c := content[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
