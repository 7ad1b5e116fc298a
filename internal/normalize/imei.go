package normalize

// CleanIMEITruncate digit-strips raw and truncates to 15 digits if longer,
// matching Telcel and AT&T's tolerant handling of over-length IMEIs.
// Returns false if fewer than 15 digits remain.
func CleanIMEITruncate(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) < 15 {
		return "", false
	}
	return digits[:15], true
}

// CleanIMEIStrict digit-strips raw and accepts it only if exactly 15
// digits remain, matching Movistar and Altán's rejection of malformed
// IMEIs rather than truncating them.
func CleanIMEIStrict(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) != 15 {
		return "", false
	}
	return digits, true
}
