package tokenmanager

import (
	"strconv"
	"strings"
)

// BuildQRURL embeds the session id and PIN as query parameters of baseURL,
// in that order. Inputs are not validated.
func BuildQRURL(baseURL string, sessionID uint, pin int) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep +
		"session_id=" + strconv.FormatUint(uint64(sessionID), 10) +
		"&pin=" + strconv.Itoa(pin)
}
