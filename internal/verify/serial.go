package verify

import "regexp"

// serialPattern matches registrar serial numbers: an uppercase alphanumeric
// run of 7 to 12 characters on its own word boundary. State formats vary
// (digits only, letter-prefixed, mixed), which is why the pattern stays this
// permissive.
var serialPattern = regexp.MustCompile(`\b[A-Z0-9]{7,12}\b`)

// ExtractSerialNumber returns the first serial-number candidate in the
// extracted text. The boolean is false when no candidate was found.
func ExtractSerialNumber(text string) (string, bool) {
	match := serialPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
