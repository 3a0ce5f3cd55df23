// Package privacy masks personal data (addresses, emails, national ids) before
// it reaches logs or traces.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// AnonymizeIP truncates an IP address to its network prefix:
// IPv4 keeps the /24, IPv6 keeps the /48.
// Returns "invalid" for unparseable addresses and "unknown" for empty input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskEmail keeps the first character of the local part and the domain:
// "ana.perez@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// HashNationalID returns a short stable digest usable as a correlation key
// in logs and span attributes without exposing the raw value.
func HashNationalID(nationalID int64) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(nationalID, 10)))
	return hex.EncodeToString(sum[:8])
}
