package fs

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Address is either a filesystem path or a URL.
type Address interface {
	String() string
	isAddress()
}

// Path is a filesystem path in the host's native form.
type Path string

func (p Path) String() string { return string(p) }
func (Path) isAddress()       {}

// URL is an already-parsed URL address.
type URL struct {
	*url.URL
}

// AddressOf wraps u as an Address.
func AddressOf(u *url.URL) URL {
	return URL{URL: u}
}

func (u URL) String() string {
	if u.URL == nil {
		return ""
	}
	return u.URL.String()
}
func (URL) isAddress() {}

// Single-letter schemes are Windows drive letters, not URLs.
var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]+:`)

// IsURLLike reports whether s carries a URL scheme.
func IsURLLike(s string) bool {
	return schemeRE.MatchString(s)
}

// ToURL normalizes addr into its canonical URL. Relative paths are resolved
// against cwd.
func ToURL(addr Address, cwd string) (*url.URL, error) {
	switch a := addr.(type) {
	case nil:
		return nil, &OpError{Op: OpToURL, Kind: ErrInvalidAddress, Err: fmt.Errorf("nil address")}
	case URL:
		if a.URL == nil {
			return nil, &OpError{Op: OpToURL, Kind: ErrInvalidAddress, Err: fmt.Errorf("nil url")}
		}
		if a.Scheme == "" {
			return nil, &OpError{Op: OpToURL, URL: a.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("missing scheme")}
		}
		u := *a.URL
		return &u, nil
	case Path:
		s := string(a)
		if s == "" {
			return nil, &OpError{Op: OpToURL, Kind: ErrInvalidAddress, Err: fmt.Errorf("empty path")}
		}
		if IsURLLike(s) {
			u, err := url.Parse(s)
			if err != nil {
				return nil, &OpError{Op: OpToURL, URL: s, Kind: ErrInvalidAddress, Err: err}
			}
			return u, nil
		}
		return FileURL(s, cwd), nil
	default:
		return nil, &OpError{Op: OpToURL, URL: addr.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("unknown address type %T", addr)}
	}
}

// FileURL converts a native path into a file URL, resolving relative paths
// against cwd.
func FileURL(p, cwd string) *url.URL {
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	trailing := strings.HasSuffix(p, string(filepath.Separator)) || strings.HasSuffix(p, "/")
	p = filepath.ToSlash(filepath.Clean(p))
	if !strings.HasPrefix(p, "/") {
		// Windows volume, e.g. C:/x
		p = "/" + p
	}
	if trailing && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return &url.URL{Scheme: "file", Path: p}
}

// FilePath converts a file URL back into a native path.
func FilePath(u *url.URL) (string, error) {
	if u == nil {
		return "", &OpError{Op: "toPath", Kind: ErrInvalidAddress, Err: fmt.Errorf("nil url")}
	}
	if u.Scheme != "file" {
		return "", &OpError{Op: "toPath", URL: u.String(), Kind: ErrUnsupportedScheme, Err: fmt.Errorf("scheme %q is not file", u.Scheme)}
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", &OpError{Op: "toPath", URL: u.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("remote host %q", u.Host)}
	}
	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		// /C:/x
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// URLBasename returns the last path segment of u, ignoring a trailing slash.
func URLBasename(u *url.URL) string {
	p := strings.TrimSuffix(urlPath(u), "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// URLDirname returns the parent of u. The result always ends with "/".
func URLDirname(u *url.URL) *url.URL {
	p := strings.TrimSuffix(urlPath(u), "/")
	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	parent := *u
	parent.Path = dir
	parent.RawPath = ""
	parent.RawQuery = ""
	parent.Fragment = ""
	parent.Opaque = ""
	return &parent
}

func urlPath(u *url.URL) string {
	if u.Path == "" && u.Opaque != "" {
		return u.Opaque
	}
	return u.Path
}
