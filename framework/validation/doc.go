// Package validation checks flat key/value maps against pipe-separated rule
// strings. Configuration binding uses it to validate bound properties.
//
// # Basic Usage
//
//	err := validation.Validate(map[string]string{
//	    "server.host": "0.0.0.0",
//	    "server.port": "8080",
//	}, validation.Rules{
//	    "server.host": "required",
//	    "server.port": "required|integer|between:1,65535",
//	})
//
// Validate returns nil or an *Errors, which serialises as
// {"errors": {"server.port": ["The server.port must be between 1 and 65535."]}}.
//
// # Available Rules
//
// Presence:
//   - required  : value must be non-empty
//   - nullable  : an empty value skips the remaining rules
//   - sometimes : an absent key skips the remaining rules
//
// Type:
//   - string, numeric, integer
//   - boolean : true/false/1/0/yes/no/on/off (case-insensitive)
//   - email, url (scheme and host required)
//
// Size (numeric values when the field also has numeric or integer, otherwise
// UTF-8 length):
//   - min:n, max:n, size:n, between:min,max
//
// Comparison:
//   - gt:n, gte:n, lt:n, lte:n
//   - in:a,b,c and not_in:a,b,c
//   - same:other and different:other compare with another key
//
// Format:
//   - alpha, alpha_num, alpha_dash, regex:pattern
//
// Keys are validated in sorted order and each key stops at its first failing
// rule. An unknown rule name is reported as a failure.
package validation
