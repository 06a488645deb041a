package converter

import "net/url"

// DecodeDescription reverses the double URL-encoding of ControlMap
// description fields. The editor percent-encodes the HTML once and the
// transport layer encodes the whole field again, so decoding is applied
// exactly twice. Never to a fixpoint: literal %-sequences that belong to
// the content must survive.
func DecodeDescription(encoded string) string {
	if encoded == "" {
		return ""
	}

	once, err := url.PathUnescape(encoded)
	if err != nil {
		// Malformed escape: keep the field as received.
		return encoded
	}

	twice, err := url.PathUnescape(once)
	if err != nil {
		return once
	}

	return twice
}
