package redis

import "fmt"

const ns = "tigertix:v1"

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

// KeyIdempotency scopes an Idempotency-Key header to one route, one caller
// and one resource. Two callers sending the same header never share a record.
func KeyIdempotency(scope, caller, resource, idemKey string) string {
	return fmt.Sprintf("%s:idem:%s:%s:%s:%s", ns, scope, caller, resource, idemKey)
}

func KeyInterpretation(textHash string) string {
	return fmt.Sprintf("%s:llm:interpretation:%s", ns, textHash)
}

func KeyRevokedToken(jti string) string {
	return fmt.Sprintf("%s:auth:revoked:%s", ns, jti)
}

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
