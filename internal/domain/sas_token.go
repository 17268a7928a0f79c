package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SAS token field names and prefix.
const (
	SASTokenPrefix = "SharedAccessSignature"

	sasAudienceField  = "sr"
	sasSignatureField = "sig"
	sasExpiryField    = "se"
)

// DefaultTokenTTL is the lifetime of a token when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// BuildAudience returns the token audience for a device, or for a module on
// that device when moduleID is non-empty.
//
// deviceID and moduleID are escaped individually, then the joined resource
// path is escaped again as a whole:
//
//	BuildAudience("hub.net", "dev 1", "mod")
//	  inner: hub.net/devices/dev+1/modules/mod
//	  result: hub.net%2Fdevices%2Fdev%2B1%2Fmodules%2Fmod
func BuildAudience(host, deviceID, moduleID string) string {
	var b strings.Builder
	b.WriteString(host)
	b.WriteString("/devices/")
	b.WriteString(url.QueryEscape(deviceID))
	if moduleID != "" {
		b.WriteString("/modules/")
		b.WriteString(url.QueryEscape(moduleID))
	}
	return url.QueryEscape(b.String())
}

// BuildExpiry returns start+ttl as whole seconds since the Unix epoch,
// rounded down.
func BuildExpiry(start time.Time, ttl time.Duration) string {
	return strconv.FormatInt(start.Add(ttl).Unix(), 10)
}

// SigningPayload returns the bytes the workload API signs for a token.
func SigningPayload(audience, expiry string) []byte {
	return []byte(audience + "\n" + expiry)
}

// BuildToken assembles the token string. Field order is fixed: sr, sig, se.
//
// audience is used as-is; signature and expiry are query-escaped.
func BuildToken(audience, signature, expiry string) string {
	var b strings.Builder
	b.WriteString(SASTokenPrefix)
	b.WriteByte(' ')
	b.WriteString(sasAudienceField)
	b.WriteByte('=')
	b.WriteString(audience)
	b.WriteByte('&')
	b.WriteString(sasSignatureField)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(signature))
	b.WriteByte('&')
	b.WriteString(sasExpiryField)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(expiry))
	return b.String()
}
