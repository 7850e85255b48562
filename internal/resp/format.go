package resp

import (
	"strconv"
	"strings"
)

// Format renders v the way redis-cli prints replies: quoted bulk strings,
// typed integers and errors, and numbered, indented array elements
func Format(v Value) string {
	var sb strings.Builder
	format(&sb, v, "")
	return sb.String()
}

func format(sb *strings.Builder, v Value, indent string) {
	switch v := v.(type) {
	case SimpleString:
		sb.WriteString(string(v))
	case Error:
		sb.WriteString("(error) ")
		sb.WriteString(string(v))
	case Integer:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case BulkString:
		if v.Null {
			sb.WriteString(nilDisplay)
			return
		}
		sb.WriteString(strconv.Quote(string(v.Data)))
	case Array:
		if v.Null {
			sb.WriteString(nilDisplay)
			return
		}
		if len(v.Elems) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		for i, el := range v.Elems {
			if i > 0 {
				sb.WriteByte('\n')
				sb.WriteString(indent)
			}
			prefix := strconv.Itoa(i+1) + ") "
			sb.WriteString(prefix)
			format(sb, el, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		sb.WriteString(nilDisplay)
	}
}
