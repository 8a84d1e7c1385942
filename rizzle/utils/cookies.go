package utils

import (
	"os"
	"strings"

	"github.com/aki237/nscjar"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	"github.com/rizzle-org/rizzle-golang/rizzle/core"
)

// CookieDomain is the registrable domain whose cookies hold the session.
const CookieDomain = "deezer.com"

// CredentialsFromCookieFile reads the sid and arl cookies from a Netscape cookies.txt export. Cookies of other
// sites are ignored. It fails if no arl cookie is found; sid is optional.
func CredentialsFromCookieFile(path string) (core.Credentials, error) {
	file, err := os.Open(path)
	if err != nil {
		return core.Credentials{}, errors.Wrap(err, "open cookie file")
	}
	defer file.Close()

	var parser nscjar.Parser
	cookies, err := parser.Unmarshal(file)
	if err != nil {
		return core.Credentials{}, errors.Wrap(err, "parse cookie file")
	}

	creds := core.Credentials{}
	for _, cookie := range cookies {
		if !matchesDomain(cookie.Domain) {
			continue
		}

		switch cookie.Name {
		case "sid":
			creds.SessionID = cookie.Value
		case "arl":
			creds.AccountToken = cookie.Value
		}
	}

	if creds.AccountToken == "" {
		return core.Credentials{}, errors.Errorf("no arl cookie for %s in %s", CookieDomain, path)
	}
	return creds, nil
}

func matchesDomain(domain string) bool {
	host := strings.TrimPrefix(strings.ToLower(domain), ".")
	if host == "" {
		return false
	}

	etld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return etld == CookieDomain
}
