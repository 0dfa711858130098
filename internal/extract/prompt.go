package extract

import "strings"

// buildExtractionPrompt wraps one chunk of report text in the pipe-format
// extraction instructions. The format mirrors what parseLine expects.
func buildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a medical lab report parser. Extract every lab test result from the report text below.\n\n")
	b.WriteString("Output one line per test result, using exactly this pipe-separated format:\n")
	b.WriteString("TEST_NAME|TEST_TYPE|VALUE|UNIT|REFERENCE_RANGE|ABNORMAL_FLAG\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- TEST_TYPE is BLOOD or URINE. Classify serum and plasma tests as BLOOD.\n")
	b.WriteString("- VALUE is the measured result only, without its unit.\n")
	b.WriteString("- UNIT, REFERENCE_RANGE and ABNORMAL_FLAG may be left empty when the report does not show them.\n")
	b.WriteString("- ABNORMAL_FLAG is the report's own marking (H, L, High, Low) or empty for a normal result.\n")
	b.WriteString("- Output data lines only. No headers, no commentary, no blank lines.\n\n")
	b.WriteString("Report text:\n")
	b.WriteString(text)
	return b.String()
}
