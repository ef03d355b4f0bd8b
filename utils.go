package handles

import (
	"fmt"
	"strings"
)

// ParseATURI splits at://repo/collection/rkey into its parts.
func ParseATURI(uri string) (string, string, string, error) {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return "", "", "", fmt.Errorf("unsupported uri scheme")
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("invalid at uri: %s", uri)
	}

	return parts[0], parts[1], parts[2], nil
}

func ComposeATURI(repo, collection, rkey string) string {
	return "at://" + repo + "/" + collection + "/" + rkey
}

// ReverseDomain turns "name.is.vgay.fyi" into "fyi.vgay.is.name".
func ReverseDomain(domain string) string {
	labels := strings.Split(domain, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ".")
}

// PageKey is the record key a page is stored and served under.
func PageKey(domain, fileName string) string {
	return ReverseDomain(domain) + "." + fileName
}
