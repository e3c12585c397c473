// Package token fetches room join tokens from the Tinychat HTTP API.
//
// A token is requested once per join:
//
//	GET https://tinychat.com/api/v1.0/room/token/<room>
//	{"result": "<token>"}
//
// The field holding the token is addressed with a gjson path, "result" by
// default. Every failure (transport, non-2xx status, invalid body, missing or
// non-string field) wraps ErrFetch. There are no retries.
package token
