package query

import "net/url"

// Key identifies a cache entry: a resource name plus its canonical parameter
// encoding. Two keys built from the same values are equal regardless of the
// order the parameters were set in.
type Key struct {
	Resource string
	Params   string
}

// NewKey builds a key for resource. url.Values.Encode sorts by parameter
// name, which makes the encoding canonical.
func NewKey(resource string, params url.Values) Key {
	k := Key{Resource: resource}
	if len(params) > 0 {
		k.Params = params.Encode()
	}
	return k
}

// String renders the key as resource?params.
func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}

// Matches reports whether k falls under prefix: same resource, and either the
// prefix has no parameters or they are identical.
func (k Key) Matches(prefix Key) bool {
	if k.Resource != prefix.Resource {
		return false
	}
	return prefix.Params == "" || prefix.Params == k.Params
}
