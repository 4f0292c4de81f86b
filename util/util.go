package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

// Hack symbols (labels and variables) may hold letters, digits, '_', '.',
// '$' and ':', and may not start with a digit.

func IsSymbolStart(b byte) bool {
	return IsLetterOrUnderscore(b) || b == '.' || b == '$' || b == ':'
}

func IsSymbolByte(b byte) bool {
	return IsSymbolStart(b) || IsNumber(b)
}
