package config

import "encoding/json"

// UnmarshalJSONC decodes JSON that may carry line ("//") and block ("/* */")
// comments, the dialect used by the host's configuration files and by the
// embedded default configuration.
func UnmarshalJSONC(data []byte, v any) error {
	return json.Unmarshal(StripJSONComments(data), v)
}

// StripJSONComments replaces comments outside string literals with spaces,
// preserving offsets so decode errors still point at the right place.
func StripJSONComments(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	const (
		stateCode = iota
		stateString
		stateStringEscape
		stateLineComment
		stateBlockComment
	)

	state := stateCode
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				out[i] = ' '
			}
		case stateString:
			if c == '\\' {
				state = stateStringEscape
			} else if c == '"' {
				state = stateCode
			}
		case stateStringEscape:
			state = stateString
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}
	return out
}
