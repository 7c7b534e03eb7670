package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when an image URL resolves to a loopback,
// private, link-local or otherwise internal address
var ErrBlockedAddress = errors.New("image URL resolves to a non-public address")

// carrier-grade NAT space, not covered by netip.Addr.IsPrivate
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher downloads images that are submitted by URL instead of upload.
// Connections to internal addresses are refused unless AllowPrivate is set.
type Fetcher struct {
	HTTPClient   *http.Client
	MaxBytes     int64
	AllowPrivate bool
}

// NewFetcher creates a new image fetcher that refuses bodies over maxBytes
func NewFetcher(maxBytes int64) *Fetcher {
	f := &Fetcher{MaxBytes: maxBytes}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   f.checkAddress,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// a proxy would make the dialed address the proxy's, hiding the target
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	f.HTTPClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
	return f
}

// checkAddress runs after DNS resolution for every connection, redirects
// included, so it sees the IP actually dialed.
func (f *Fetcher) checkAddress(network, address string, _ syscall.RawConn) error {
	if f.AllowPrivate {
		return nil
	}

	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}

	if !isPublic(ip.Unmap()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// Download fetches imageURL and returns its bytes together with a filename
// taken from the last path segment of the URL.
func (f *Fetcher) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("invalid image URL: %q", imageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > f.MaxBytes {
		return nil, "", fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}
	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("downloaded image is empty")
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "." || filename == "/" {
		filename = "image.jpg"
	}

	slog.Debug("Downloaded image", "url", imageURL, "bytes", len(imageData))
	return imageData, filename, nil
}
