// Package canonical serialises engine values into a byte-stable JSON form
// and derives content digests from it.
//
// The encoding follows RFC 8785 where it matters for hashing:
//   - object keys are ordered by UTF-16 code units
//   - strings are NFC normalised and only quote, backslash and control
//     characters are escaped (no HTML escaping)
//   - NaN and infinities are rejected
//   - negative zero is written as 0
//
// Values are first passed through encoding/json, so struct tags decide
// field names exactly as they do for the public snapshot JSON.
package canonical
