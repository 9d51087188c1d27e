package core

import (
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// IsPURL reports whether the candidate looks like a Package URL rather
// than a bare registry name.
func IsPURL(candidate string) bool {
	return strings.HasPrefix(candidate, "pkg:")
}

// NameFromPURL resolves an npm Package URL to the registry package name,
// e.g. "pkg:npm/%40babel/core@7.24.0" -> "@babel/core". Non-npm PURLs
// are rejected.
func NameFromPURL(purl string) (string, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return "", fmt.Errorf("parsing purl %q: %w", purl, err)
	}

	if p.Type != packageurl.TypeNPM {
		return "", fmt.Errorf("unsupported purl type %q (only npm is supported)", p.Type)
	}

	// packageurl-go keeps @ in the namespace, so "@babel" + "/" + "core"
	// yields the scoped name the registry expects.
	if p.Namespace != "" {
		return p.Namespace + "/" + p.Name, nil
	}
	return p.Name, nil
}
