// Package uri normalizes IPFS content references. The canonical form used
// everywhere in the worker is ipfs://<cid>; bare CIDs and gateway URLs are
// accepted at the boundary and rewritten.
package uri

import (
	"fmt"
	"strings"
)

// Scheme is the canonical IPFS reference scheme
const Scheme = "ipfs://"

// Normalize rewrites a content reference into the canonical ipfs://<cid>
// form. It accepts canonical references, bare CIDs, and gateway URLs with an
// /ipfs/ path segment. Empty input stays empty; anything unrecognized is
// returned unchanged.
func Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, Scheme) {
		return Scheme + strings.TrimPrefix(ref, Scheme)
	}

	// Gateway URL, e.g. https://gateway.pinata.cloud/ipfs/QmXxx
	if parts := strings.SplitN(ref, "/ipfs/", 2); len(parts) == 2 && parts[1] != "" {
		return Scheme + strings.TrimSuffix(parts[1], "/")
	}

	if strings.Contains(ref, "://") {
		return ref
	}

	// Bare CID
	return Scheme + ref
}

// CID extracts the bare CID from a reference, normalizing first
func CID(ref string) string {
	return strings.TrimPrefix(Normalize(ref), Scheme)
}

// ToGatewayURL converts a reference into a fetchable HTTP URL on the given
// gateway. Plain http(s) URLs pass through untouched.
func ToGatewayURL(gateway, ref string) (string, error) {
	normalized := Normalize(ref)
	if normalized == "" {
		return "", fmt.Errorf("empty content reference")
	}

	if strings.HasPrefix(normalized, "http://") || strings.HasPrefix(normalized, "https://") {
		return normalized, nil
	}

	cid := strings.TrimPrefix(normalized, Scheme)
	return fmt.Sprintf("%s/ipfs/%s", strings.TrimSuffix(gateway, "/"), cid), nil
}
