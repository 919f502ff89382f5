package eligibility

import "strings"

const bearerScheme = "bearer"

// ExtractBearerToken returns the credential from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively. Any other scheme, a
// missing header or an empty token yields "".
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
