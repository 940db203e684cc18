package crawl

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/webcrawler"
	"golang.org/x/net/idna"
)

// HostFunc derives the host a URL belongs to.
type HostFunc func(rawURL string) (string, error)

// HostOf returns the normalized host of rawURL: lowercased, without port,
// and with internationalized names converted to their ASCII form.
// Returns EMALFORMED if the URL cannot be parsed or has no host.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webcrawler.Errorf(webcrawler.EMALFORMED, "malformed URL %q: %v", rawURL, err)
	}

	host := strings.ToLower(u.Hostname())
	if !u.IsAbs() || host == "" {
		return "", webcrawler.Errorf(webcrawler.EMALFORMED, "malformed URL %q: no host", rawURL)
	}

	// IP literals are not domain names.
	if net.ParseIP(host) != nil {
		return host, nil
	}

	ascii, err := idna.Punycode.ToASCII(host)
	if err != nil {
		return "", webcrawler.Errorf(webcrawler.EMALFORMED, "malformed URL %q: %v", rawURL, err)
	}
	return ascii, nil
}
