package config

import "strings"

var propertiesUnescaper = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\\`, `\`)

// ParseProperties reads Java-style properties: one key per line, split at the
// first '=' (or, when a line has none, the first ':'). Blank lines and lines
// starting with '#' or '!' are skipped, as are lines with no separator.
// Values support the escapes \n, \t, \r and \\.
//
//	db.url = jdbc:postgres://localhost/app
//	greeting: hello\tworld
func ParseProperties(content string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		sep := strings.IndexByte(line, '=')
		if sep < 0 {
			sep = strings.IndexByte(line, ':')
		}
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		out[key] = propertiesUnescaper.Replace(value)
	}
	return out
}
