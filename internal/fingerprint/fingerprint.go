// Package fingerprint derives the stable device identifier a license is bound to.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Length is the length of a hex-encoded SHA-256 digest.
const Length = 64

var pattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

// Valid reports whether s looks like a device fingerprint.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Generate hashes the characteristics as sorted key=value lines, so the result
// does not depend on map iteration order.
func Generate(characteristics map[string]string) string {
	keys := make([]string, 0, len(characteristics))
	for k := range characteristics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(characteristics[k])
		b.WriteByte('\n')
	}
	return FromSeed(b.String())
}

// FromSeed hashes an arbitrary seed string.
func FromSeed(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// Characteristics collects the host attributes that survive reboots and
// upgrades of user software.
func Characteristics(ctx context.Context) (map[string]string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}

	return map[string]string{
		"host_id":  info.HostID,
		"hostname": info.Hostname,
		"os":       info.OS,
		"platform": info.Platform,
		"arch":     info.KernelArch,
	}, nil
}

// Local returns the fingerprint of the machine it runs on.
func Local(ctx context.Context) (string, error) {
	c, err := Characteristics(ctx)
	if err != nil {
		return "", err
	}
	return Generate(c), nil
}
